package types

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Item is one accepted scan recorded in a session. Items are never edited;
// only the most recent one of a session may be deleted.
type Item struct {
	ID          int64           `json:"id"`
	SessionID   int64           `json:"session_id"`
	RawBarcode  string          `json:"raw_barcode"`
	ProductCode string          `json:"product_code"`
	Weight      decimal.Decimal `json:"weight"`
	Units       decimal.Decimal `json:"units"`
	Batch       string          `json:"batch"`
	Consecutive string          `json:"consecutive"`
	ScannedAt   time.Time       `json:"scanned_at"`
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
