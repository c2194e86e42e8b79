package domain

// Stage is a state of the verification pipeline.
type Stage string

const (
	StageOpening           Stage = "opening"
	StageRendering         Stage = "rendering"
	StageScanningSignature Stage = "scanning_signature"
	StageClassifying       Stage = "classifying"
	StageComparing         Stage = "comparing"
	StageSummarizing       Stage = "summarizing"
	StageDone              Stage = "done"
	StageError             Stage = "error"
	StageCancelled         Stage = "cancelled"
)

// EventKind discriminates progress updates from terminal events.
type EventKind string

const (
	EventProgress EventKind = "processing"
	EventDone     EventKind = "done"
	EventError    EventKind = "error"
)

// ProgressEvent is one element of the verification event sequence.
type ProgressEvent struct {
	Kind    EventKind           `json:"status"`
	Stage   Stage               `json:"stage"`
	Message string              `json:"message,omitempty"`
	Percent int                 `json:"progress"`
	Report  *VerificationReport `json:"data,omitempty"`
	Err     error               `json:"-"`

	// UploadKey is set on the first event of a streamed run; it names the
	// stored upload for the cancel endpoint.
	UploadKey string `json:"upload_key,omitempty"`
	// VerificationID is set on the done event once the result is stored.
	VerificationID string `json:"verification_id,omitempty"`
}

// Terminal reports whether the event ends the sequence.
func (e ProgressEvent) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}
