package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"business_reviews/internal/adapters/observability"
	"business_reviews/internal/app"
	"business_reviews/internal/domain"
)

// SecretHeader carries the shared secret when one is configured.
const SecretHeader = "X-Webhook-Secret"

const maxBodyBytes = 64 << 10

type Handlers struct {
	Intake *app.IntakeService
	Q      *app.QueryService
	// Health reports datastore reachability; nil means always healthy.
	Health func(ctx context.Context) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type submitResponse struct {
	OK      bool          `json:"ok"`
	Message string        `json:"message"`
	Status  domain.Status `json:"status"`
	ID      int64         `json:"id"`
}

type listResponse struct {
	OK      bool            `json:"ok"`
	Reviews []domain.Review `json:"reviews"`
	Count   int             `json:"count"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)
	s.mux.Post("/api/reviews/submit", h.submitReview)
	s.mux.Get("/api/reviews", h.listReviews)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail logs err with request context and writes the client-facing message.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
		observability.CaptureError(err, map[string]string{"route": routeOf(r)})
	}
	ev.Err(err).
		Str("route", routeOf(r)).
		Str("method", r.Method).
		Int("status", status).
		Str("request_id", chimw.GetReqID(r.Context())).
		Msg("request failed")
	writeError(w, status, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusInternalServerError, "failed to classify review"
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
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

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health(r.Context()); err != nil {
			log.Error().Err(err).Msg("health check failed")
			writeError(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	// secret first: unauthenticated bodies are never parsed
	if err := h.Intake.Authorize(r.Header.Get(SecretHeader)); err != nil {
		fail(w, r, err)
		return
	}

	var sub domain.Submission
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		fail(w, r, fmt.Errorf("%w: invalid JSON body", domain.ErrValidation))
		return
	}

	res, err := h.Intake.Submit(r.Context(), sub)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		OK:      true,
		Message: "Review submitted successfully",
		Status:  res.Status,
		ID:      res.ID,
	})
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := strings.TrimSpace(q.Get("business_id"))

	// A malformed id cannot match any review, so it is treated as absent.
	var newReviewID *int64
	if s := strings.TrimSpace(q.Get("newReviewId")); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			newReviewID = &id
		}
	}

	reviews, err := h.Q.ListApproved(r.Context(), businessID, newReviewID)
	if err != nil {
		fail(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	etag, body := calcETagAndBody(listResponse{OK: true, Reviews: reviews, Count: len(reviews)})
	if body == nil {
		fail(w, r, errors.New("encode reviews response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}
