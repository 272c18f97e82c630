package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/grindworks/grindstone/internal/database"
	"github.com/grindworks/grindstone/internal/logger"
)

const sessionCookieName = "grindstone_session"

type contextKey string

const accountKey contextKey = "account"

// accountFrom returns the authenticated account placed on the request context
// by requireAuth.
func accountFrom(r *http.Request) *database.Account {
	account, _ := r.Context().Value(accountKey).(*database.Account)
	return account
}

// requireAuth resolves the session cookie to an account before calling next.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		account, err := s.db.GetAccountBySession(cookie.Value)
		if err != nil {
			if errors.Is(err, database.ErrSessionNotFound) {
				s.clearSessionCookie(w)
				writeError(w, http.StatusUnauthorized, "session expired")
				return
			}
			logger.Error("Session lookup failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), accountKey, account)))
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) validatePassword(password string) error {
	min := s.config.Password.MinLength
	max := s.config.Password.MaxLength
	if len(password) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	if max > 0 && len(password) > max {
		return fmt.Errorf("password must be at most %d characters", max)
	}
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := s.db.CreateAccount(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrAccountExists):
			writeError(w, http.StatusConflict, "username already taken")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	logger.Info("Account created", "username", account.Username, "client_ip", getRealIP(r))
	s.issueSession(w, r, account)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.db.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrInvalidCredentials) {
			logger.Warning("Failed login attempt", "username", req.Username, "client_ip", getRealIP(r))
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		logger.Error("Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.issueSession(w, r, account)
}

func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, account *database.Account) {
	ttl := time.Duration(s.config.HTTP.SessionTTLHours) * time.Hour
	token, expires, err := s.db.CreateAuthSession(account.ID, ttl)
	if err != nil {
		logger.Error("Failed to create auth session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": account.ID,
		"username":   account.Username,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.db.DeleteAuthSession(cookie.Value); err != nil {
			logger.Warning("Failed to delete auth session", "error", err)
		}
	}
	s.clearSessionCookie(w)

	// flush game progress on the way out
	if err := s.registry.Save(account.ID); err != nil {
		logger.Error("Failed to save session on logout", "account_id", account.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account := accountFrom(r)
	balance, err := s.db.GetPointsBalance(account.ID)
	if err != nil {
		logger.Error("Failed to load points balance", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"account_id": account.ID,
		"username":   account.Username,
		"points":     balance,
	})
}
