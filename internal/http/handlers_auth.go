package http

import (
	"net/http"

	"divvy/internal/auth"
	"divvy/internal/core"
)

type userResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Mobile string `json:"mobile,omitempty"`
}

type sessionResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    userResponse `json:"user"`
}

func accountResponse(a *core.Account) userResponse {
	return userResponse{ID: a.ID, Name: a.Name, Email: a.Email, Mobile: a.Mobile}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
		Mobile          string `json:"mobile"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.authenticator.Register(r.Context(), auth.Registration{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Mobile:          req.Mobile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.jwt.Generate(account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    accountResponse(account),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := s.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.jwt.Generate(account)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Logged in successfully",
		Token:   token,
		User:    accountResponse(account),
	})
}

// handleLogout exists to give clients a uniform endpoint; tokens are
// stateless, so logging out is discarding the token client-side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *Server) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Authenticated",
		User: userResponse{
			ID:    GetUserID(r.Context()),
			Email: GetEmail(r.Context()),
		},
	})
}
