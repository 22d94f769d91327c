package canonical

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payload is the untyped extraction output as decoded JSON.
type Payload = map[string]any

// Prediction navigates a raw payload to the prediction/fields object the
// schema mappings read. Navigation order: document.inference.prediction
// (v1), inference.prediction (v1), inference.result.fields (v2); a payload
// that is already a bare prediction is returned as-is.
func Prediction(raw Payload) Payload {
	if raw == nil {
		return nil
	}
	if doc, ok := raw["document"].(map[string]any); ok {
		if inf, ok := doc["inference"].(map[string]any); ok {
			if pred, ok := inf["prediction"].(map[string]any); ok && len(pred) > 0 {
				return pred
			}
		}
	}
	if inf, ok := raw["inference"].(map[string]any); ok {
		if pred, ok := inf["prediction"].(map[string]any); ok && len(pred) > 0 {
			return pred
		}
		if result, ok := inf["result"].(map[string]any); ok {
			if fields, ok := result["fields"].(map[string]any); ok && len(fields) > 0 {
				return fields
			}
		}
	}
	return raw
}

// Unwrap peels the provider's {"value": ...} / {"values": ...} wrappers.
func Unwrap(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if inner, ok := m["value"]; ok {
		return inner
	}
	if inner, ok := m["values"]; ok {
		return inner
	}
	return v
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02"}

// ParseDate normalizes a raw date value to an ISO date string, or "" when it
// cannot be read.
func ParseDate(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// ParseDecimal reads a raw numeric value, accepting numbers and numeric
// strings. Returns nil when absent or unreadable.
func ParseDecimal(v any) *decimal.Decimal {
	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		d := decimal.NewFromFloat(value)
		return &d
	case int:
		d := decimal.NewFromInt(int64(value))
		return &d
	case int64:
		d := decimal.NewFromInt(value)
		return &d
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return nil
		}
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return nil
		}
		return &d
	default:
		return nil
	}
}
