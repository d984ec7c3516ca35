package types

import "strings"

// Product is one row of the local catalog copy.
type Product struct {
	Code        string `json:"code" db:"code"`
	Description string `json:"description" db:"description"`
}

// NormalizeCode strips leading zeros from a product code. A code made only
// of zeros normalizes to "0".
func NormalizeCode(code string) string {
	if n := strings.TrimLeft(code, "0"); n != "" {
		return n
	}
	return "0"
}
