// Package barcode decodes and encodes the fixed-width 39-character labels
// printed on weighed stock. Fields are extracted purely by position:
//
//	offset  len  field
//	     0    2  prefix, always "90"
//	     2   10  product code, left-zero-padded
//	    12    4  weight, integer part
//	    16    2  weight, hundredths
//	    18    4  units, integer part
//	    22    2  units, hundredths
//	    24    5  batch
//	    29   10  consecutive
package barcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/lector/pkg/types"
)

// Length is the exact length of a label after trimming, counted in
// characters. Offsets below are character offsets.
const Length = 39

// Prefix opens every label.
const Prefix = "90"

// Field widths.
const (
	productCodeWidth = 10
	intWidth         = 4
	decWidth         = 2
	batchWidth       = 5
	consecutiveWidth = 10
)

// Field offsets.
const (
	offProductCode = 2
	offWeightInt   = 12
	offWeightDec   = 16
	offUnitsInt    = 18
	offUnitsDec    = 22
	offBatch       = 24
	offConsecutive = 29
)

// Decode errors. Decode wraps them with the offending detail.
var (
	ErrInvalidLength  = errors.New("invalid length")
	ErrInvalidPrefix  = errors.New("invalid prefix")
	ErrInvalidNumeric = errors.New("invalid numeric format in weight or units")
)

// Decoded holds the fields of an accepted label.
type Decoded struct {
	RawBarcode            string          `json:"raw_barcode"`
	Prefix                string          `json:"prefix"`
	ProductCode           string          `json:"product_code"`
	ProductCodeNormalized string          `json:"product_code_normalized"`
	WeightInt             string          `json:"weight_int"`
	WeightDec             string          `json:"weight_dec"`
	UnitsInt              string          `json:"units_int"`
	UnitsDec              string          `json:"units_dec"`
	Weight                decimal.Decimal `json:"weight"`
	Units                 decimal.Decimal `json:"units"`
	WeightRaw             int64           `json:"weight_raw"`
	UnitsRaw              int64           `json:"units_raw"`
	Batch                 string          `json:"batch"`
	Consecutive           string          `json:"consecutive"`
}

// Decode validates raw and slices it into its fields by character position.
// Surrounding whitespace is ignored. Decode has no side effects.
func Decode(raw string) (*Decoded, error) {
	code := strings.TrimSpace(raw)
	chars := []rune(code)

	if len(chars) != Length {
		return nil, fmt.Errorf("%w: %d characters (expected %d)", ErrInvalidLength, len(chars), Length)
	}
	field := func(from, to int) string { return string(chars[from:to]) }

	if prefix := field(0, offProductCode); prefix != Prefix {
		return nil, fmt.Errorf("%w: %q (expected %q)", ErrInvalidPrefix, prefix, Prefix)
	}

	d := &Decoded{
		RawBarcode:  code,
		Prefix:      field(0, offProductCode),
		ProductCode: field(offProductCode, offWeightInt),
		WeightInt:   field(offWeightInt, offWeightDec),
		WeightDec:   field(offWeightDec, offUnitsInt),
		UnitsInt:    field(offUnitsInt, offUnitsDec),
		UnitsDec:    field(offUnitsDec, offBatch),
		Batch:       field(offBatch, offConsecutive),
		Consecutive: field(offConsecutive, Length),
	}
	d.ProductCodeNormalized = types.NormalizeCode(d.ProductCode)

	var err error
	if d.Weight, d.WeightRaw, err = parseQuantity(d.WeightInt, d.WeightDec); err != nil {
		return nil, fmt.Errorf("%w: weight %s.%s", ErrInvalidNumeric, d.WeightInt, d.WeightDec)
	}
	if d.Units, d.UnitsRaw, err = parseQuantity(d.UnitsInt, d.UnitsDec); err != nil {
		return nil, fmt.Errorf("%w: units %s.%s", ErrInvalidNumeric, d.UnitsInt, d.UnitsDec)
	}
	return d, nil
}

// IsValid reports whether raw decodes without error.
func IsValid(raw string) bool {
	_, err := Decode(raw)
	return err == nil
}

// parseQuantity turns the integer and hundredths digit groups into a decimal
// and the same value scaled by 100. Both groups must be plain ASCII digits.
func parseQuantity(intPart, decPart string) (decimal.Decimal, int64, error) {
	if !allDigits(intPart) || !allDigits(decPart) {
		return decimal.Zero, 0, strconv.ErrSyntax
	}
	value, err := decimal.NewFromString(intPart + "." + decPart)
	if err != nil {
		return decimal.Zero, 0, err
	}
	scaled, err := strconv.ParseInt(intPart+decPart, 10, 64)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return value, scaled, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatWeight renders a weight for display, e.g. "33.40 kg".
func FormatWeight(w decimal.Decimal) string {
	return w.StringFixed(2) + " kg"
}

// FormatUnits renders a unit count for display, e.g. "2.00 uds".
func FormatUnits(u decimal.Decimal) string {
	return u.StringFixed(2) + " uds"
}
