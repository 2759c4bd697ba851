package lifecycle

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/middleware"
	"github.com/opencourt/platform/pkg/publication"
)

// HTTPHandler exposes the operator-only retirement endpoints.
type HTTPHandler struct {
	manager  *Manager
	adminKey string
}

func NewHTTPHandler(manager *Manager, adminKey string) *HTTPHandler {
	return &HTTPHandler{manager: manager, adminKey: adminKey}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	admin := middleware.RequireAdminKey(h.adminKey)
	router.Handle("/publications/{id}", admin(http.HandlerFunc(h.handleDelete))).Methods(http.MethodDelete)
	router.Handle("/publications/{id}/archive", admin(http.HandlerFunc(h.handleArchive))).Methods(http.MethodPut)
}

func (h *HTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.manager.DeleteByID(r.Context(), id, requesterID(r, h.adminKey)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.manager.ArchiveByID(r.Context(), id, requesterID(r, h.adminKey)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requesterID(r *http.Request, adminKey string) string {
	if requester := middleware.Requester(r, adminKey); requester != nil {
		return requester.UserID
	}
	return ""
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, publication.ErrNotFound) {
		http.Error(w, "artefact not found", http.StatusNotFound)
		return
	}
	logger.Log.WithError(err).Error("lifecycle request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
