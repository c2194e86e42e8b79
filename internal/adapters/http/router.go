package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/acceptance-verifier/internal/config"
	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
	"github.com/kirillkom/acceptance-verifier/internal/observability/metrics"
)

const (
	serviceName         = "api"
	multipartMemory     = 8 << 20
	backpressureWait    = 250 * time.Millisecond
	defaultUploadLimit  = 50 << 20
	uploadCancelBodyMax = 4 << 10
)

type Router struct {
	cfg       config.Config
	submitter ports.VerificationSubmitter
	streamer  ports.VerificationStreamer
	reader    ports.VerificationReader
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
	spec      []byte
}

func NewRouter(
	cfg config.Config,
	submitter ports.VerificationSubmitter,
	streamer ports.VerificationStreamer,
	reader ports.VerificationReader,
) *Router {
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = defaultUploadLimit
	}
	return &Router{
		cfg:       cfg,
		submitter: submitter,
		streamer:  streamer,
		reader:    reader,
		logger:    slog.Default(),
	}
}

func (rt *Router) WithLogger(logger *slog.Logger) *Router {
	if logger != nil {
		rt.logger = logger
	}
	return rt
}

// WithMetrics records request metrics and serves them on /metrics.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

// WithOpenAPI serves the given document on /openapi.json.
func (rt *Router) WithOpenAPI(spec []byte) *Router {
	rt.spec = spec
	return rt
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/verifications/stream", rt.streamVerification)
	api.HandleFunc("POST /v1/verifications", rt.submitVerification)
	api.HandleFunc("GET /v1/verifications", rt.listVerifications)
	api.HandleFunc("GET /v1/verifications/{id}", rt.getVerification)
	api.HandleFunc("DELETE /v1/verifications/{id}", rt.deleteVerification)
	api.HandleFunc("GET /v1/verifications/{id}/export", rt.exportVerification)
	api.HandleFunc("POST /v1/uploads/cancel", rt.cancelUpload)

	var limited http.Handler = api
	limited = backpressureMiddleware(limited, rt.cfg.APIMaxInFlight, backpressureWait, rt.onReject("backpressure"))
	limited = rateLimitMiddleware(limited, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onReject("rate_limit"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.json", rt.openAPI)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", limited)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) onReject(reason string) func() {
	return func() {
		if rt.metrics != nil {
			rt.metrics.RecordRejected(serviceName, reason)
		}
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPI(w http.ResponseWriter, _ *http.Request) {
	if len(rt.spec) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "openapi document is not configured"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rt.spec)
}

type upload struct {
	file     multipart.File
	filename string
	mimeType string
	docType  domain.DocumentType
}

// readUpload parses the multipart form shared by the submit and stream endpoints.
func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.UploadMaxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "upload exceeds size limit"})
			return nil, false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return nil, false
	}

	docType := domain.ParseDocumentType(r.FormValue("doc_type"))
	if !docType.IsKnown() {
		file.Close()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "doc_type must be VERIFIKASI_BAUT or VERIFIKASI_BACT"})
		return nil, false
	}

	return &upload{
		file:     file,
		filename: header.Filename,
		mimeType: header.Header.Get("Content-Type"),
		docType:  docType,
	}, true
}

func (rt *Router) submitVerification(w http.ResponseWriter, r *http.Request) {
	up, ok := rt.readUpload(w, r)
	if !ok {
		return
	}
	defer up.file.Close()

	v, err := rt.submitter.Submit(r.Context(), up.filename, up.mimeType, up.docType, up.file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, v)
}

// streamVerification runs the pipeline while the client watches. A client
// disconnect cancels the request context and with it the run.
func (rt *Router) streamVerification(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming is not supported by response writer"})
		return
	}

	up, ok := rt.readUpload(w, r)
	if !ok {
		return
	}
	defer up.file.Close()

	events, err := rt.streamer.Stream(r.Context(), up.filename, up.mimeType, up.docType, up.file)
	if err != nil {
		writeError(w, err)
		return
	}

	startEventStream(w)
	flusher.Flush()
	for event := range events {
		if err := writeEvent(w, event); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (rt *Router) listVerifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	items, err := rt.reader.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Verification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (rt *Router) getVerification(w http.ResponseWriter, r *http.Request) {
	v, err := rt.reader.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (rt *Router) deleteVerification(w http.ResponseWriter, r *http.Request) {
	if err := rt.reader.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) exportVerification(w http.ResponseWriter, r *http.Request) {
	exported, err := rt.reader.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", exported.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exported.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(exported.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exported.Data)
}

func (rt *Router) cancelUpload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, uploadCancelBodyMax)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}
	if err := rt.streamer.DiscardUpload(r.Context(), req.Key); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
