package handler

import (
	"net/http"

	"github.com/yusufkecer/bmi-tracker/internal/domain"
	"github.com/yusufkecer/bmi-tracker/internal/middleware"
	"github.com/yusufkecer/bmi-tracker/internal/service"
)

type UserHandler struct {
	tracker *service.Tracker
	tokens  *middleware.SessionTokens
}

func NewUserHandler(tracker *service.Tracker, tokens *middleware.SessionTokens) *UserHandler {
	return &UserHandler{tracker: tracker, tokens: tokens}
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type loadUserResponse struct {
	Token   string                `json:"token"`
	User    domain.User           `json:"user"`
	Latest  *domain.BmiRecord     `json:"latest"`
	History []domain.HistoryPoint `json:"history"`
	Message string                `json:"message"`
}

// Create registers a user and starts a session for them.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	user, err := h.tracker.CreateUser(r.Context(), sess, req.Email, req.Name)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: *user})
}

// Load finds a user by email, starts a session and returns their data.
func (h *UserHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	snap, err := h.tracker.LoadUser(r.Context(), sess, req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(snap.User.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	message := "No BMI data found for " + snap.User.Name
	if snap.Latest != nil {
		message = service.Summary(snap.Latest.BMI, snap.Latest.Category)
	}

	writeJSON(w, http.StatusOK, loadUserResponse{
		Token:   token,
		User:    snap.User,
		Latest:  snap.Latest,
		History: snap.History,
		Message: message,
	})
}

// Logout revokes the caller's session token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeDomainError(w, r, domain.ErrNoActiveUser)
		return
	}

	h.tokens.Revoke(claims)
	h.tracker.Logout(middleware.SessionFromContext(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
