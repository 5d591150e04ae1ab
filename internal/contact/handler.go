package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/http/middleware"
	"github.com/labease/labease-platform/pkg/logging"
)

// Handler handles HTTP requests for contact messages.
type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *logging.Logger
}

// NewHandler creates a contact handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// SubmitRequest is the body of POST /api/contact. Omitting lab_id
// addresses the message to the platform admins.
type SubmitRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Message string `json:"message" validate:"required,max=5000"`
	LabID   *int64 `json:"lab_id" validate:"omitempty,gt=0"`
}

// Submit handles POST /api/contact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m := &Message{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Body:  req.Message,
		LabID: req.LabID,
	}
	if err := h.service.Submit(r.Context(), m); err != nil {
		if errors.Is(err, catalog.ErrLabNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("contact submit failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("contact message stored", "message_id", m.ID, "admin", m.RecipientAdmin)
	writeJSON(w, http.StatusCreated, m)
}

// ListForLab handles GET /portal/messages for the authenticated lab.
func (h *Handler) ListForLab(w http.ResponseWriter, r *http.Request) {
	labID, ok := middleware.LabIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing lab context", http.StatusUnauthorized)
		return
	}
	messages, err := h.service.MessagesForLab(r.Context(), labID)
	if err != nil {
		h.logger.Error("contact list failed", "lab_id", labID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"messages": messages,
		"count":    len(messages),
	})
}

// DeleteForLab handles DELETE /portal/messages/{id}.
func (h *Handler) DeleteForLab(w http.ResponseWriter, r *http.Request) {
	labID, ok := middleware.LabIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing lab context", http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteForLab(r.Context(), id, labID); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("contact delete failed", "message_id", id, "lab_id", labID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
