package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"water_map/internal/adapters/observability"
	"water_map/internal/app"
	"water_map/internal/domain"
)

type Handlers struct {
	Sub  *app.SubmissionService
	Rev  *app.ReviewService
	Q    *app.QueryService
	Auth *app.AuthService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/restaurants", h.submitRestaurant)
	s.mux.Get("/v1/restaurants/approved", h.listApproved)
	s.mux.Get("/v1/restaurants/{id}", h.getRestaurant)
	s.mux.Post("/v1/admin/login", h.adminLogin)

	s.mux.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.Auth))
		r.Get("/v1/admin/restaurants/pending", h.listPending)
		r.Post("/v1/admin/restaurants/{id}/review", h.reviewRestaurant)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- submissions ----

func (h *Handlers) submitRestaurant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name"`
		Address   string  `json:"address"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Policy    string  `json:"water_billing_policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	msg, err := h.Sub.Submit(r.Context(), domain.NewRestaurant{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Policy:    domain.WaterBillingPolicy(req.Policy),
	})

	var verr *domain.ValidationError
	switch {
	case err == nil:
		observability.ObserveSubmission("ok")
		writeJSON(w, http.StatusCreated, successResponse{Success: true, Message: msg})
	case errors.Is(err, domain.ErrDuplicateSubmission):
		observability.ObserveSubmission("duplicate")
		writeProblem(w, http.StatusConflict, "Duplicate Submission",
			fmt.Sprintf("Restaurant %q at %q has already been submitted", req.Name, req.Address))
	case errors.As(err, &verr):
		observability.ObserveSubmission("invalid")
		writeProblem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	default:
		observability.ObserveSubmission("error")
		log.Error().Err(err).Msg("submit restaurant failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "submission failed")
	}
}

// ---- queries ----

func (h *Handlers) listApproved(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListApproved(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list approved failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "query failed")
		return
	}
	if out == nil {
		out = []domain.ApprovedRestaurant{}
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) listPending(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListPending(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list pending failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "query failed")
		return
	}
	if out == nil {
		out = []domain.PendingRestaurant{}
	}
	writeWithETag(w, r, out)
}

func (h *Handlers) getRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	rec, err := h.Q.GetByID(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "restaurant not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("get restaurant failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "query failed")
		return
	}
	writeWithETag(w, r, rec)
}

// ---- moderation ----

func (h *Handlers) reviewRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	admin, ok := AdminFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing admin identity")
		return
	}

	var req struct {
		Action string  `json:"action"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	msg, err := h.Rev.Review(r.Context(), id, domain.ReviewAction(req.Action), admin, req.Notes)

	var verr *domain.ValidationError
	switch {
	case err == nil:
		observability.ObserveReview(req.Action, "ok")
		writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msg})
	case errors.Is(err, domain.ErrInvalidReviewState):
		observability.ObserveReview(req.Action, "conflict")
		writeProblem(w, http.StatusConflict, "Invalid Review State", "Restaurant not found or not in pending status")
	case errors.As(err, &verr):
		observability.ObserveReview(req.Action, "invalid")
		writeProblem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	default:
		observability.ObserveReview(req.Action, "error")
		log.Error().Err(err).Int64("id", id).Msg("review restaurant failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "review failed")
	}
}

// ---- auth ----

func (h *Handlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}

	msg, token, err := h.Auth.Login(r.Context(), req.Username, req.Password)

	var verr *domain.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: msg, Token: token})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, loginResponse{Success: false, Message: "Invalid username or password"})
	case errors.As(err, &verr):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", verr.Error())
	default:
		log.Error().Err(err).Msg("admin login failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "login failed")
	}
}
