package domain

import "fmt"

// ConfirmationSMSText is sent after the RMA email went out.
func ConfirmationSMSText(msgID string) string {
	return fmt.Sprintf("Your return request has been submitted. Reference: %s. We will process your request within 1-2 business days.", msgID)
}

// FallbackSMSText is sent instead of the RMA email when email delivery failed.
func FallbackSMSText(vendor, orderID string) string {
	return fmt.Sprintf("Your %s order %s return request has been submitted. Due to a system issue we will process your request through another channel.", vendor, OrderIDLast4(orderID))
}
