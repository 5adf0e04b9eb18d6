package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"coupon-service/internal/model"
)

// maxDiscount is the first magnitude that no longer fits numeric(12,2)
var maxDiscount = decimal.New(1, 10)

// DiscountValue is the "discountValue" request field. Clients send a number
// for VALUE and PERCENTAGE campaigns and a description string for BRINDE, so
// both JSON forms are accepted. A numeric string also counts as a number.
type DiscountValue struct {
	text    string
	number  decimal.Decimal
	numeric bool
	quoted  bool
}

// NumberValue returns a numeric discount value
func NumberValue(d decimal.Decimal) DiscountValue {
	return DiscountValue{number: d, numeric: true}
}

// TextValue returns a textual discount value
func TextValue(s string) DiscountValue {
	v := DiscountValue{text: s, quoted: true}
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		v.number, v.numeric = d, true
	}
	return v
}

func (v *DiscountValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TextValue(s)
		return nil
	}

	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return errors.New("discountValue must be a number or a string")
	}
	*v = NumberValue(d)
	return nil
}

// Decimal returns the numeric form of v, if it has one
func (v DiscountValue) Decimal() (decimal.Decimal, bool) {
	return v.number, v.numeric
}

// Text returns v when it was sent as a string
func (v DiscountValue) Text() (string, bool) {
	return v.text, v.quoted
}

// resolveDiscount validates v against t and splits it into the stored columns:
// BRINDE keeps only the trimmed description, the other types only the magnitude.
// Magnitudes are rounded to cents before the bounds are checked, so the stored
// value is the one that was validated.
func resolveDiscount(t model.DiscountType, v DiscountValue) (decimal.NullDecimal, *string, error) {
	if t == model.DiscountGift {
		desc, ok := v.Text()
		desc = strings.TrimSpace(desc)
		if !ok || desc == "" {
			return decimal.NullDecimal{}, nil, validationError("Brinde description is required")
		}
		return decimal.NullDecimal{}, &desc, nil
	}

	d, ok := v.Decimal()
	if !ok {
		return decimal.NullDecimal{}, nil, validationError("Discount value must be a number")
	}
	d = d.Round(2)

	switch t {
	case model.DiscountPercentage:
		if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.NullDecimal{}, nil, validationError("Percentage discount must be between 0 and 100")
		}
	case model.DiscountValue:
		if !d.IsPositive() {
			return decimal.NullDecimal{}, nil, validationError("Value discount must be greater than 0")
		}
		if d.GreaterThanOrEqual(maxDiscount) {
			return decimal.NullDecimal{}, nil, validationError("Value discount is too large")
		}
	}

	return decimal.NewNullDecimal(d), nil, nil
}
