package domain

import (
	"math"
	"strings"
)

// DocumentType selects the checklist a submission is verified against.
type DocumentType string

const (
	DocumentTypeBAUT DocumentType = "VERIFIKASI_BAUT"
	DocumentTypeBACT DocumentType = "VERIFIKASI_BACT"
)

// ParseDocumentType accepts the canonical names and the short BAUT/BACT aliases.
// Unrecognized input is returned as-is so the comparator can reject it.
func ParseDocumentType(raw string) DocumentType {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch v {
	case "BAUT", string(DocumentTypeBAUT):
		return DocumentTypeBAUT
	case "BACT", string(DocumentTypeBACT):
		return DocumentTypeBACT
	default:
		return DocumentType(v)
	}
}

// IsKnown reports whether t has a checklist.
func (t DocumentType) IsKnown() bool {
	return t == DocumentTypeBAUT || t == DocumentTypeBACT
}

// SignatureStatus is the three-way outcome of the signature scan.
type SignatureStatus string

const (
	SignatureFound    SignatureStatus = "FOUND"
	SignatureNotFound SignatureStatus = "NOT_FOUND"
	SignatureError    SignatureStatus = "ERROR"
)

// SignatureVerdict is the document-level signature result.
type SignatureVerdict struct {
	Status SignatureStatus `json:"status"`
	Reason string          `json:"reason,omitempty"`
	// Page is the zero-based index of the page that matched, -1 otherwise.
	Page int `json:"page"`
}

func SignatureFoundOn(page int) SignatureVerdict {
	return SignatureVerdict{Status: SignatureFound, Page: page}
}

func SignatureAbsent() SignatureVerdict {
	return SignatureVerdict{Status: SignatureNotFound, Page: -1}
}

func SignatureFailed(reason string) SignatureVerdict {
	return SignatureVerdict{Status: SignatureError, Reason: reason, Page: -1}
}

func (v SignatureVerdict) Found() bool { return v.Status == SignatureFound }

// ItemStatus is the pass/fail state of a checklist line.
type ItemStatus string

const (
	ItemOK    ItemStatus = "OK"
	ItemNotOK ItemStatus = "NOT_OK"
)

// VerificationItemResult is one checklist line of a report.
type VerificationItemResult struct {
	DisplayName string     `json:"name"`
	Category    string     `json:"category"`
	Status      ItemStatus `json:"status"`
	Note        string     `json:"note"`
}

// Level is the coarse grade derived from the score.
type Level string

const (
	LevelGood        Level = "Good"
	LevelNeedsReview Level = "NeedsReview"
)

// DefaultAcceptThreshold is the score at or above which a report is Good/ACCEPTED.
const DefaultAcceptThreshold = 70.0

// VerificationReport is the final output of one pipeline run.
type VerificationReport struct {
	DocumentType DocumentType             `json:"document_type"`
	Items        []VerificationItemResult `json:"items"`
	Score        float64                  `json:"score"`
	Level        Level                    `json:"level"`
	Summary      string                   `json:"summary"`
	Signature    SignatureVerdict         `json:"signature"`
	Pages        []PageRecord             `json:"pages"`
}

// OKCount returns the number of satisfied items.
func (r VerificationReport) OKCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == ItemOK {
			n++
		}
	}
	return n
}

// Score computes round(100*ok/total, 2); an empty item list scores 0.
func Score(items []VerificationItemResult) float64 {
	if len(items) == 0 {
		return 0
	}
	ok := 0
	for _, item := range items {
		if item.Status == ItemOK {
			ok++
		}
	}
	return math.Round(10000*float64(ok)/float64(len(items))) / 100
}

// LevelFor grades a score against threshold.
func LevelFor(score, threshold float64) Level {
	if score >= threshold {
		return LevelGood
	}
	return LevelNeedsReview
}

// ExportedReport is a downloadable rendering of a verification report.
type ExportedReport struct {
	Filename    string
	ContentType string
	Data        []byte
}
