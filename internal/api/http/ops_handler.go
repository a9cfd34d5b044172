// Package http exposes a small operations endpoint for administrators:
// health checks and invitation attribution queries.
package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"invitebot-backend/internal/domain"
	"invitebot-backend/internal/logger"
	"invitebot-backend/internal/service"
)

// OpsHandler serves the ops API. Every route except /healthz requires the
// configured bearer secret.
type OpsHandler struct {
	invitation service.InvitationService
	db         *sql.DB
	secret     string
}

func NewOpsHandler(invitation service.InvitationService, db *sql.DB, secret string) *OpsHandler {
	return &OpsHandler{
		invitation: invitation,
		db:         db,
		secret:     secret,
	}
}

// Router builds the mux router with request-id logging and auth middleware.
func (h *OpsHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.requestID)
	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(h.authorize)
	api.HandleFunc("/attributions/{invitee}", h.handleAttribution).Methods(http.MethodGet)
	api.HandleFunc("/links/{inviter}", h.handleLinks).Methods(http.MethodGet)
	return r
}

func (h *OpsHandler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		logger.Info("Ops API request", "request_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (h *OpsHandler) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+h.secret {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *OpsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type attributionResponse struct {
	Inviter   *domain.User `json:"inviter"`
	Invitee   *domain.User `json:"invitee"`
	LinkToken string       `json:"link_token,omitempty"`
	InvitedAt time.Time    `json:"invited_at"`
}

func (h *OpsHandler) handleAttribution(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["invitee"]

	attr, err := h.invitation.LookupInviter(r.Context(), ref)
	if errors.Is(err, service.ErrUnknownUser) {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if attr == nil {
		http.Error(w, "no attribution recorded", http.StatusNotFound)
		return
	}

	resp := attributionResponse{
		Inviter:   attr.Inviter,
		Invitee:   attr.Invitee,
		InvitedAt: attr.InvitedAt,
	}
	if attr.Link != nil {
		resp.LinkToken = attr.Link.Token
	}
	writeJSON(w, http.StatusOK, resp)
}

type linksResponse struct {
	Inviter *domain.User        `json:"inviter"`
	Links   []domain.InviteLink `json:"links"`
}

func (h *OpsHandler) handleLinks(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["inviter"]

	inviter, links, err := h.invitation.LinksOf(r.Context(), ref)
	if errors.Is(err, service.ErrUnknownUser) {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, linksResponse{Inviter: inviter, Links: links})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode ops API response", "error", err)
	}
}
