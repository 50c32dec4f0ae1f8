// Package handler serves the evaluation sessions over REST and WebSocket.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ideaeval/internal/gateway/session"
	"ideaeval/internal/orchestrator"
	"ideaeval/internal/util/jsonutil"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	sessions *session.Store
	log      *log.Logger
}

// New creates the handler. Provide a custom logger or nil to use log.Default().
func New(sessions *session.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{sessions: sessions, log: logger}
}

// Mount registers the session routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Post("/submit", h.Submit)
			r.Post("/reset", h.Reset)
			r.Get("/image", h.Image)
			r.Get("/ws", h.SessionWS)
		})
	})
}

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type sessionView struct {
	SessionID string                `json:"sessionId"`
	Snapshot  orchestrator.Snapshot `json:"snapshot"`
}

type submitView struct {
	SessionID string                `json:"sessionId"`
	Accepted  bool                  `json:"accepted"`
	Reason    string                `json:"reason,omitempty"`
	Snapshot  orchestrator.Snapshot `json:"snapshot"`
}

type resetView struct {
	SessionID string                `json:"sessionId"`
	Reset     bool                  `json:"reset"`
	Snapshot  orchestrator.Snapshot `json:"snapshot"`
}

type submitRequest struct {
	Idea string `json:"idea"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	h.write(w, status, apiResponse{Success: status >= 200 && status < 300, Data: data})
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.write(w, status, apiResponse{Error: &apiError{Code: code, Message: message}})
}

func (h *Handler) write(w http.ResponseWriter, status int, resp apiResponse) {
	body, err := jsonutil.MarshalNoEscape(resp)
	if err != nil {
		h.log.Printf("encode response failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"sessions": h.sessions.Len(),
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) CreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := h.sessions.Create()
	if err != nil {
		h.log.Printf("create session failed: %v", err)
		h.respondError(w, http.StatusInternalServerError, "internal", "could not create session")
		return
	}
	h.respondJSON(w, http.StatusCreated, sessionView{SessionID: sess.ID, Snapshot: sess.Pipeline.Snapshot()})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "session_not_found", "session does not exist or has expired")
		return nil, false
	}
	return sess, true
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, sessionView{SessionID: sess.ID, Snapshot: sess.Pipeline.Snapshot()})
}

// Submit starts a run and answers immediately; progress is read through
// GetSession or the socket. Rejected intents are not errors.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var in submitRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&in); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "body must be a JSON object with an idea field")
		return
	}
	snap, err := sess.Pipeline.Start(sess.Context(), in.Idea)
	if err != nil {
		reason, known := rejectReason(err)
		if !known {
			h.log.Printf("session %s: submit failed: %v", sess.ID, err)
			h.respondError(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
		h.respondJSON(w, http.StatusOK, submitView{SessionID: sess.ID, Reason: reason, Snapshot: snap})
		return
	}
	h.respondJSON(w, http.StatusAccepted, submitView{SessionID: sess.ID, Accepted: true, Snapshot: snap})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	done := sess.Pipeline.Reset()
	h.respondJSON(w, http.StatusOK, resetView{SessionID: sess.ID, Reset: done, Snapshot: sess.Pipeline.Snapshot()})
}

// Image serves the prototype as raw bytes.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.lookup(w, r)
	if !ok {
		return
	}
	img := sess.Pipeline.Snapshot().Image
	if img == nil {
		h.respondError(w, http.StatusNotFound, "no_image", "no prototype image is available")
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func rejectReason(err error) (string, bool) {
	switch {
	case errors.Is(err, orchestrator.ErrEmptyInput):
		return "empty_input", true
	case errors.Is(err, orchestrator.ErrBusy):
		return "busy", true
	case errors.Is(err, orchestrator.ErrResetRequired):
		return "reset_required", true
	}
	return strings.TrimSpace(err.Error()), false
}
