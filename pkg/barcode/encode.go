package barcode

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ErrFieldOverflow is returned by Encode when a value does not fit its
// fixed-width slot.
var ErrFieldOverflow = errors.New("field does not fit its width")

// maxQuantity is the largest value a 4+2 digit slot can hold.
var maxQuantity = decimal.RequireFromString("9999.99")

// Fields are the inputs to Encode. Codes shorter than their slot are
// left-padded with zeros; Batch is right-padded with spaces.
type Fields struct {
	ProductCode string
	Weight      decimal.Decimal
	Units       decimal.Decimal
	Batch       string
	Consecutive string
}

// Fields returns the values needed to re-encode d.
func (d *Decoded) Fields() Fields {
	return Fields{
		ProductCode: d.ProductCode,
		Weight:      d.Weight,
		Units:       d.Units,
		Batch:       d.Batch,
		Consecutive: d.Consecutive,
	}
}

// Encode builds a label from f. Quantities are truncated to hundredths.
func Encode(f Fields) (string, error) {
	product, err := padLeft("product code", f.ProductCode, productCodeWidth)
	if err != nil {
		return "", err
	}
	weight, err := encodeQuantity("weight", f.Weight)
	if err != nil {
		return "", err
	}
	units, err := encodeQuantity("units", f.Units)
	if err != nil {
		return "", err
	}
	batchLen := utf8.RuneCountInString(f.Batch)
	if batchLen > batchWidth {
		return "", fmt.Errorf("%w: batch %q is longer than %d", ErrFieldOverflow, f.Batch, batchWidth)
	}
	batch := f.Batch + strings.Repeat(" ", batchWidth-batchLen)
	consecutive, err := padLeft("consecutive", f.Consecutive, consecutiveWidth)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(Length)
	b.WriteString(Prefix)
	b.WriteString(product)
	b.WriteString(weight)
	b.WriteString(units)
	b.WriteString(batch)
	b.WriteString(consecutive)
	return b.String(), nil
}

func padLeft(name, s string, width int) (string, error) {
	n := utf8.RuneCountInString(s)
	if n > width {
		return "", fmt.Errorf("%w: %s %q is longer than %d", ErrFieldOverflow, name, s, width)
	}
	return strings.Repeat("0", width-n) + s, nil
}

func encodeQuantity(name string, q decimal.Decimal) (string, error) {
	if q.IsNegative() || q.GreaterThan(maxQuantity) {
		return "", fmt.Errorf("%w: %s %s outside 0..%s", ErrFieldOverflow, name, q, maxQuantity)
	}
	scaled := q.Shift(2).Truncate(0).IntPart()
	return fmt.Sprintf("%0*d", intWidth+decWidth, scaled), nil
}
