package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"jobgrid.org/internal/auth"
	"jobgrid.org/internal/board"
	"jobgrid.org/internal/gate"
	"jobgrid.org/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID     string `json:"user_id"`
	UserType   string `json:"user_type"`
	FullName   string `json:"full_name"`
	Token      string `json:"token,omitempty"`
	RedirectTo string `json:"redirect_to"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	clientID := strings.TrimSpace(r.Header.Get(clientIDHeader))
	res, err := a.auth.Login(r.Context(), req.Email, req.Password, clientID)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		UserID:     res.User.ID,
		UserType:   string(res.User.UserType),
		FullName:   res.User.FullName,
		Token:      res.Token,
		RedirectTo: res.RedirectTo,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	clientID := strings.TrimSpace(r.Header.Get(clientIDHeader))
	if err := a.auth.Logout(r.Context(), clientID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeRedirect(w, r, gate.LoginPath)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	u := &board.User{
		Email:    req.Email,
		Phone:    req.Phone,
		FullName: req.FullName,
		UserType: board.UserType(req.UserType),
	}
	if err := a.auth.Register(r.Context(), u, req.Password); err != nil {
		handleBoardError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":   u.ID,
		"user_type": string(u.UserType),
	})
}

// handleSession reports who the presented credentials resolve to. Anonymous is
// not an error: the response carries authenticated=false.
func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	actor, ok := session.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user_id":       actor.ID,
		"user_type":     string(actor.UserType),
		"full_name":     actor.FullName,
		"email":         actor.Email,
	})
}
