// Package codec translates telemetry and order messages to and from the
// bus's wire text format.
//
// The format is deliberately lenient: telemetry lines are pipe-delimited
// key/value text, and order requests are free text matched by keyword and
// product-name substrings. Anything that fails to parse is reported as
// ErrMalformedMessage and dropped by the caller; messages are best-effort.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/model"
)

// ErrMalformedMessage marks an inbound payload that could not be parsed.
// Callers log and discard; it never propagates further.
var ErrMalformedMessage = errors.New("malformed message")

const (
	productKey = "Product"
	weightKey  = "Weight"
	// orderKeyword gates order-request payloads, matched case-insensitively.
	orderKeyword = "refill"
)

// Sanitize converts a raw payload to valid UTF-8, replacing invalid bytes.
// Inbound bus payloads are lossy-decoded, never rejected for encoding.
func Sanitize(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// EncodeTelemetry renders a record as "Product: <name> | Weight: <w>", with
// the weight fixed to two decimals.
func EncodeTelemetry(rec model.TelemetryRecord) string {
	return fmt.Sprintf("%s: %s | %s: %.2f", productKey, rec.Product, weightKey, rec.Weight)
}

// DecodeTelemetry parses a telemetry line back into product and weight. The
// caller stamps the record's timestamp on receipt. Any structural or numeric
// failure yields ErrMalformedMessage.
func DecodeTelemetry(line string) (model.TelemetryRecord, error) {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return model.TelemetryRecord{}, fmt.Errorf("%w: missing delimiter", ErrMalformedMessage)
	}
	product, err := segmentValue(parts[0], productKey)
	if err != nil {
		return model.TelemetryRecord{}, err
	}
	raw, err := segmentValue(parts[1], weightKey)
	if err != nil {
		return model.TelemetryRecord{}, err
	}
	weight, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.TelemetryRecord{}, fmt.Errorf("%w: weight %q", ErrMalformedMessage, raw)
	}
	return model.TelemetryRecord{Product: product, Weight: weight}, nil
}

// segmentValue splits one "Key: value" segment and checks the key.
func segmentValue(seg, key string) (string, error) {
	kv := strings.SplitN(seg, ": ", 2)
	if len(kv) != 2 {
		return "", fmt.Errorf("%w: segment %q", ErrMalformedMessage, seg)
	}
	if strings.TrimSpace(kv[0]) != key {
		return "", fmt.Errorf("%w: expected %s segment, got %q", ErrMalformedMessage, key, seg)
	}
	v := strings.TrimSpace(kv[1])
	if v == "" {
		return "", fmt.Errorf("%w: empty %s", ErrMalformedMessage, key)
	}
	return v, nil
}

// EncodeOrderRequest renders an order as "<LABEL> refill for <product>".
func EncodeOrderRequest(o model.Order) string {
	return fmt.Sprintf("%s %s for %s", o.Origin.Label(), orderKeyword, o.Product)
}

// IsOrderRequest reports whether a payload carries the refill keyword.
func IsOrderRequest(payload string) bool {
	return strings.Contains(strings.ToLower(payload), orderKeyword)
}

// MatchProduct scans the known product list in order and returns the first
// name that appears in the payload as a case-insensitive substring. First
// match wins when several products appear; the format is lenient by contract.
// ok is false when no known product is named, and the caller falls back to
// its focused product.
func MatchProduct(payload string, products []string) (string, bool) {
	lower := strings.ToLower(payload)
	for _, p := range products {
		if strings.Contains(lower, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}
