package domain

// Provenance names the signal that produced a page's final class.
type Provenance string

const (
	ProvenanceModel           Provenance = "MODEL"
	ProvenanceKeywordOverride Provenance = "KEYWORD_OVERRIDE"
)

// SourceDocument is an opened submission: its location, page count and any
// embedded text layer (one entry per page, empty when the page has none).
type SourceDocument struct {
	Path      string
	MimeType  string
	PageCount int
	TextLayer []string
}

// PageText returns the embedded text of the page at index, or "".
func (d SourceDocument) PageText(index int) string {
	if index < 0 || index >= len(d.TextLayer) {
		return ""
	}
	return d.TextLayer[index]
}

// PageImage is a rendered page raster stored inside a run's working area.
type PageImage struct {
	Index int
	Path  string
}

// PageRecord is the classification outcome for one page.
type PageRecord struct {
	Index           int        `json:"index"`
	ImageRef        string     `json:"-"`
	Text            string     `json:"-"`
	TextExtracted   bool       `json:"text_extracted"`
	FinalClass      Category   `json:"final_class"`
	Provenance      Provenance `json:"provenance"`
	ModelClass      Category   `json:"model_class"`
	ModelConfidence float64    `json:"model_confidence"`
	KeywordClass    Category   `json:"keyword_class,omitempty"`
}

// ClampConfidence bounds a model confidence into [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
