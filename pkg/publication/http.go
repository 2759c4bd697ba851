package publication

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/opencourt/platform/pkg/authorization"
	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/middleware"
	"github.com/opencourt/platform/pkg/location"
	"github.com/opencourt/platform/pkg/observability/metrics"
)

type HTTPHandler struct {
	service  *Service
	resolver *location.Resolver
	gate     *authorization.Gate
	adminKey string
	maxBody  int64
}

func NewHTTPHandler(service *Service, resolver *location.Resolver, gate *authorization.Gate, adminKey string, maxBody int64) *HTTPHandler {
	return &HTTPHandler{
		service:  service,
		resolver: resolver,
		gate:     gate,
		adminKey: adminKey,
		maxBody:  maxBody,
	}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	admin := middleware.RequireAdminKey(h.adminKey)

	router.HandleFunc("/publications", h.handleIngest).Methods(http.MethodPost)
	router.HandleFunc("/publications/file", h.handleIngestFile).Methods(http.MethodPost)
	router.Handle("/publications/no-match", admin(http.HandlerFunc(h.handleNoMatch))).Methods(http.MethodGet)
	router.HandleFunc("/publications/locations/{locationId}", h.handleByLocation).Methods(http.MethodGet)
	router.HandleFunc("/publications/search/{term}", h.handleSearch).Methods(http.MethodGet)
	router.HandleFunc("/publications/{id}", h.handleGet).Methods(http.MethodGet)
	router.HandleFunc("/publications/{id}/payload", h.handlePayload).Methods(http.MethodGet)
	router.HandleFunc("/publications/{id}/file", h.handleFile).Methods(http.MethodGet)
}

// validationResponse names the offending header so the submitting system can
// fix its request without guessing.
type validationResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *HTTPHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	headers, ref, ok := h.validated(w, r)
	if !ok {
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	artefact, err := h.service.Ingest(r.Context(), headers, ref, body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeIngested(w, artefact)
}

func (h *HTTPHandler) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	headers, ref, ok := h.validated(w, r)
	if !ok {
		return
	}

	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "multipart form must carry a 'file' part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read uploaded file", http.StatusBadRequest)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	artefact, err := h.service.IngestFlatFile(r.Context(), headers, ref, data, header.Filename, contentType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeIngested(w, artefact)
}

// validated runs header validation and location resolution, writing the 400
// response itself on failure.
func (h *HTTPHandler) validated(w http.ResponseWriter, r *http.Request) (HeaderGroup, location.Ref, bool) {
	headers, err := Validate(r.Header)
	if err != nil {
		writeValidationError(w, err)
		return HeaderGroup{}, location.Ref{}, false
	}

	ref := h.resolver.Resolve(r.Context(), headers.Provenance, headers.CourtID, headers.ListType.LocationType())
	return headers, ref, true
}

func (h *HTTPHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	return io.ReadAll(r.Body)
}

func (h *HTTPHandler) writeIngested(w http.ResponseWriter, artefact *Artefact) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(artefact)
}

func (h *HTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	artefact, ok := h.visibleArtefact(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(artefact)
}

func (h *HTTPHandler) handlePayload(w http.ResponseWriter, r *http.Request) {
	artefact, ok := h.visibleArtefact(w, r)
	if !ok {
		return
	}
	if artefact.IsFlatFile {
		http.Error(w, "artefact is a flat file, use the file endpoint", http.StatusBadRequest)
		return
	}

	data, _, err := h.service.GetPayload(r.Context(), artefact)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *HTTPHandler) handleFile(w http.ResponseWriter, r *http.Request) {
	artefact, ok := h.visibleArtefact(w, r)
	if !ok {
		return
	}
	if !artefact.IsFlatFile {
		http.Error(w, "artefact is not a flat file", http.StatusBadRequest)
		return
	}

	data, meta, err := h.service.GetPayload(r.Context(), artefact)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if meta.ContentType != "" {
		w.Header().Set("Content-Type", meta.ContentType)
	}
	if meta.FileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+meta.FileName+`"`)
	}
	w.Write(data)
}

// visibleArtefact loads the artefact and applies the authorization gate. A
// classified artefact the requester cannot see reads as not found, so the
// response does not leak its existence.
func (h *HTTPHandler) visibleArtefact(w http.ResponseWriter, r *http.Request) (*Artefact, bool) {
	id := mux.Vars(r)["id"]
	artefact, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	requester := middleware.Requester(r, h.adminKey)
	if !h.gate.IsVisible(r.Context(), string(artefact.ListType), string(artefact.Sensitivity), requester) {
		metrics.IncAuthorizationDenials()
		http.Error(w, "artefact not found", http.StatusNotFound)
		return nil, false
	}
	return artefact, true
}

func (h *HTTPHandler) handleByLocation(w http.ResponseWriter, r *http.Request) {
	locationID := mux.Vars(r)["locationId"]
	artefacts, err := h.service.ByLocation(r.Context(), locationID, time.Now().UTC())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeVisible(w, r, artefacts)
}

func (h *HTTPHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := mux.Vars(r)["term"]
	artefacts, err := h.service.Search(r.Context(), term, time.Now().UTC())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeVisible(w, r, artefacts)
}

func (h *HTTPHandler) handleNoMatch(w http.ResponseWriter, r *http.Request) {
	artefacts, err := h.service.NoMatch(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(artefacts)
}

// writeVisible filters a result set down to what the requester may see and
// always answers 200 with the remainder, possibly an empty list.
func (h *HTTPHandler) writeVisible(w http.ResponseWriter, r *http.Request, artefacts []Artefact) {
	requester := middleware.Requester(r, h.adminKey)
	visible := authorization.Filter(r.Context(), h.gate, requester, artefacts)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(visible)
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := validationResponse{Error: err.Error()}
	var verr ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
		metrics.IncValidationRejection(verr.Field)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(resp)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	if IsValidationError(err) {
		writeValidationError(w, err)
		return
	}
	if errors.Is(err, ErrConflict) {
		http.Error(w, "artefact conflict", http.StatusConflict)
		return
	}
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "artefact not found", http.StatusNotFound)
		return
	}
	if errors.Is(err, blob.ErrNotFound) {
		http.Error(w, "payload not found", http.StatusNotFound)
		return
	}
	logger.Log.WithError(err).Error("publication request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
