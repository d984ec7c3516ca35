package types

import "time"

// Session is one physical counting pass, identified to the back office by
// its document number. TotalItems is maintained by the store.
type Session struct {
	ID             int64     `json:"id"`
	DocumentNumber string    `json:"document_number"`
	CreatedAt      time.Time `json:"created_at"`
	TotalItems     int       `json:"total_items"`
}

// ExportName returns the identifier used in export filenames: the document
// number, or the session ID when the document number is blank.
func (s *Session) ExportName() string {
	if s.DocumentNumber != "" {
		return s.DocumentNumber
	}
	return formatID(s.ID)
}
