package types

import "time"

// Record is one spreadsheet row: an id and the recipients for that id's PDF.
type Record struct {
	ID     string
	Emails []string
}

// DatedFolder is a directory whose name encodes a start and end date.
type DatedFolder struct {
	Path      string
	StartDate time.Time
	EndDate   time.Time
}

// AttachmentMatch is the result of resolving a record's PDF inside a folder.
// Path is empty when no file was found.
type AttachmentMatch struct {
	RecordID string
	Path     string
}

// SendStatus classifies what happened to one record.
type SendStatus int

const (
	StatusSent SendStatus = iota
	StatusSkipped
	StatusFailed
)

func (s SendStatus) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// SendOutcome records the fate of one record for reporting.
type SendOutcome struct {
	RecordID string
	Emails   []string
	Status   SendStatus
	Reason   string
}

// RunSummary is the result of one batch run.
type RunSummary struct {
	Folder     string
	SourceFile string
	Outcomes   []SendOutcome
	Sent       int
	Skipped    int
	Failed     int
}
