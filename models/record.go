package models

import "time"

// ScrapedRecord is the structured output of one scrape.
type ScrapedRecord struct {
	ZoneName  string     `json:"zoneName"`
	BossName  string     `json:"bossName"`
	TableRows []TableRow `json:"tableRows"`

	// Timestamp is taken once, when extraction begins.
	Timestamp time.Time `json:"timestamp"`
}

// TableRow is one ranking row in document order. Cells absent from the
// page are empty strings, never omitted.
type TableRow struct {
	JobName string `json:"jobName"`
	Score   string `json:"score"`
	Count   string `json:"count"`
}

// NewScrapedRecord returns an empty record captured at t.
// TableRows is non-nil so it always serializes as [].
func NewScrapedRecord(t time.Time) ScrapedRecord {
	return ScrapedRecord{
		TableRows: []TableRow{},
		Timestamp: t.UTC(),
	}
}
