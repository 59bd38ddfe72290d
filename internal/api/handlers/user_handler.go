package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wahealth/sca-simulator/internal/application/services"
	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

// Registrar covers user registration and profile lookups
type Registrar interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.RegisterResponse, error)
	OAuthRegister(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service Registrar
}

// NewUserHandler creates a new user handler
func NewUserHandler(service Registrar) *UserHandler {
	return &UserHandler{service: service}
}

// Register handles POST /api/users/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if resp.SetCookie != "" {
		w.Header().Set("Set-Cookie", resp.SetCookie)
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

type oauthRegisterBody struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// OAuthRegister handles POST /api/users/oauth-register
func (h *UserHandler) OAuthRegister(w http.ResponseWriter, r *http.Request) {
	var body oauthRegisterBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := &entities.User{
		ID:        body.ID,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	}
	if err := h.service.OAuthRegister(r.Context(), user); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}
