package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/http/middleware"
	"github.com/labease/labease-platform/pkg/logging"
)

// Handler handles HTTP requests for bookings.
type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *logging.Logger
}

// NewHandler creates a booking handler.
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

// CreateBookingRequest is the body of POST /api/bookings.
type CreateBookingRequest struct {
	PatientName string `json:"patient_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	TestID      int64  `json:"test_id" validate:"required,gt=0"`
	LabID       int64  `json:"lab_id" validate:"required,gt=0"`
	Appointment string `json:"appointment" validate:"required"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// Create handles POST /api/bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	at, err := time.Parse(time.RFC3339, req.Appointment)
	if err != nil {
		http.Error(w, "appointment must be RFC 3339", http.StatusBadRequest)
		return
	}

	b, err := h.service.Create(r.Context(), CreateRequest{
		PatientName: req.PatientName,
		Email:       req.Email,
		Phone:       req.Phone,
		TestID:      req.TestID,
		LabID:       req.LabID,
		Appointment: at,
		Notes:       req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("booking created", "code", b.Code, "test_id", b.TestID, "lab_id", b.LabID)
	writeJSON(w, http.StatusCreated, b)
}

// GetStatus handles GET /api/bookings/status?code=&email=.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	email := r.URL.Query().Get("email")
	if code == "" || email == "" {
		http.Error(w, "code and email are required", http.StatusBadRequest)
		return
	}
	b, err := h.service.Status(r.Context(), code, email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// UpdateBookingRequest is the body of PATCH /api/bookings/{code}.
type UpdateBookingRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Appointment string `json:"appointment" validate:"required"`
	Notes       string `json:"notes" validate:"omitempty,max=500"`
}

// Update handles PATCH /api/bookings/{code}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	at, err := time.Parse(time.RFC3339, req.Appointment)
	if err != nil {
		http.Error(w, "appointment must be RFC 3339", http.StatusBadRequest)
		return
	}

	b, err := h.service.Reschedule(r.Context(), code, req.Email, at, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CancelBookingRequest is the body of POST /api/bookings/{code}/cancel.
type CancelBookingRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Cancel handles POST /api/bookings/{code}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	var req CancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.service.Cancel(r.Context(), code, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ListForLab handles GET /portal/bookings for the authenticated lab.
func (h *Handler) ListForLab(w http.ResponseWriter, r *http.Request) {
	labID, ok := middleware.LabIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing lab context", http.StatusUnauthorized)
		return
	}
	bookings, err := h.service.ListForLab(r.Context(), labID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// SetStatusRequest is the body of POST /portal/bookings/{code}/status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=test_done not_arrived cancelled"`
}

// SetStatus handles POST /portal/bookings/{code}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	labID, ok := middleware.LabIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing lab context", http.StatusUnauthorized)
		return
	}
	code := chi.URLParam(r, "code")
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b, err := h.service.SetStatus(r.Context(), code, labID, Status(req.Status))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.logger.Info("booking status changed", "code", b.Code, "status", b.Status)
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, catalog.ErrTestNotFound),
		errors.Is(err, catalog.ErrLabNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEmailMismatch):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotOffered),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrBookingClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("booking request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
