package telemetry

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// VisibleTail is how many trailing characters survive masking.
const VisibleTail = 4

// DefaultSensitiveKeys are masked by every logger built with NewLogger.
var DefaultSensitiveKeys = []string{"phone", "contact_phone", "to_phone", "order_id", "idempotency_key"}

var (
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{8,}\d`)
	idPattern    = regexp.MustCompile(`\b[A-Z0-9]{8,}\b`)
)

// MaskTail replaces every character of value except the last keep with '*'.
// Values no longer than keep are returned unchanged.
func MaskTail(value string, keep int) string {
	runes := []rune(value)
	if len(runes) <= keep {
		return value
	}
	return strings.Repeat("*", len(runes)-keep) + string(runes[len(runes)-keep:])
}

// Redact masks phone numbers and uppercase alphanumeric identifiers found in free text.
func Redact(text string) string {
	text = phonePattern.ReplaceAllStringFunc(text, maskDigits)
	return idPattern.ReplaceAllStringFunc(text, func(id string) string {
		if !strings.ContainsFunc(id, unicode.IsDigit) {
			return id
		}
		return MaskTail(id, VisibleTail)
	})
}

// maskDigits hides all but the last four digits and keeps separators in place.
func maskDigits(phone string) string {
	total := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			total++
		}
	}

	var b strings.Builder
	seen := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			seen++
			if seen <= total-VisibleTail {
				b.WriteRune('*')
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func redactAttr(keys []string) func(groups []string, a slog.Attr) slog.Attr {
	sensitive := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		sensitive[k] = struct{}{}
	}

	return func(_ []string, a slog.Attr) slog.Attr {
		if _, ok := sensitive[a.Key]; !ok {
			return a
		}
		a.Value = slog.StringValue(MaskTail(a.Value.String(), VisibleTail))
		return a
	}
}
