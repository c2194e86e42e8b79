package domain

import "time"

type VerificationStatus string

const (
	VerificationQueued     VerificationStatus = "queued"
	VerificationProcessing VerificationStatus = "processing"
	VerificationAccepted   VerificationStatus = "ACCEPTED"
	VerificationRejected   VerificationStatus = "REJECTED"
	VerificationFailed     VerificationStatus = "failed"
)

// StatusForScore maps a final score to ACCEPTED/REJECTED.
func StatusForScore(score, threshold float64) VerificationStatus {
	if score >= threshold {
		return VerificationAccepted
	}
	return VerificationRejected
}

// Verification is the persisted record of a submitted document and its outcome.
type Verification struct {
	ID           string              `json:"id"`
	Filename     string              `json:"filename"`
	MimeType     string              `json:"mime_type"`
	StorageKey   string              `json:"storage_key"`
	DocumentType DocumentType        `json:"document_type"`
	Status       VerificationStatus  `json:"status"`
	Score        int                 `json:"score"`
	Report       *VerificationReport `json:"report,omitempty"`
	Summary      string              `json:"summary,omitempty"`
	Error        string              `json:"error,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// VerificationRequest is the input of one pipeline run.
type VerificationRequest struct {
	SourcePath   string
	MimeType     string
	DocumentType DocumentType
	// DiscardSource removes SourcePath when the run fails or is abandoned.
	DiscardSource bool
}

// StoredScore is the whole-number score kept on a record. Fractions are
// dropped, not rounded: 87.5 is stored as 87.
func StoredScore(score float64) int {
	return int(score)
}

// ApplyReport records a finished report and the status it implies.
func (v *Verification) ApplyReport(report VerificationReport, threshold float64) {
	v.Report = &report
	v.Score = StoredScore(report.Score)
	v.Status = StatusForScore(report.Score, threshold)
	v.Summary = report.Summary
	v.Error = ""
}
