package types

import "time"

// Column layouts for the scans table.
const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
)

// EventID is assigned by the store on insert. IDs increase with insertion
// order and are never reused.
type EventID int64

// ScanEvent is one accepted scan. Date and Time are derived from OccurredAt
// in OccurredAt's location and stored alongside it so range queries do not
// have to re-derive them.
//
// Build one with NewScanEvent; the zero ID means "not yet stored".
type ScanEvent struct {
	ID         EventID   `json:"id,omitempty"`
	Content    string    `json:"content"`
	OccurredAt time.Time `json:"occurred_at"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
}

// NewScanEvent derives Date and Time from at. The persisted columns keep
// whole seconds only.
func NewScanEvent(content string, at time.Time) ScanEvent {
	return ScanEvent{
		Content:    content,
		OccurredAt: at,
		Date:       at.Format(DateLayout),
		Time:       at.Format(TimeLayout),
	}
}

// ScannedAt is the scanned_at column value.
func (e ScanEvent) ScannedAt() string {
	return e.OccurredAt.Format(TimestampLayout)
}

// WithID returns a copy carrying the store-assigned id.
func (e ScanEvent) WithID(id EventID) ScanEvent {
	e.ID = id
	return e
}

// Row is one line of a range export.
type Row struct {
	Content string `json:"content"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}
