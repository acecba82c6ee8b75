package api

import (
	"encoding/json"
	"mime"
	"net/http"

	"git.home.luguber.info/inful/semcheck/internal/auth"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, errors.WrapError(err, errors.CategoryValidation, "invalid request body").Build())
		return
	}

	user, err := s.deps.Auth.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin accepts JSON or an OAuth2-style password form where the email
// is sent as "username".
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.fail(w, r, errors.WrapError(err, errors.CategoryValidation, "invalid request body").Build())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.fail(w, r, errors.WrapError(err, errors.CategoryValidation, "invalid form").Build())
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
	}

	email := req.Email
	if email == "" {
		email = req.Username
	}
	if email == "" || req.Password == "" {
		s.fail(w, r, errors.ValidationError("username and password are required").Build())
		return
	}

	tok, err := s.deps.Auth.Login(r.Context(), email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		s.fail(w, r, errNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
