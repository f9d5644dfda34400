// internal/httpserver/auth.go
//
// Session tokens. Creating a session hands out an HS256 JWT whose "sid"
// claim names the session; every /sessions/{id} route requires that token
// as "Authorization: Bearer <token>".

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/wordle-solver/internal/store"
)

// sessionClaims is the JWT payload of a session token.
type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// ctxSessionKey is the context key type for the authorised *store.Session.
type ctxSessionKey struct{}

// signToken creates a token for session id.
func (s *Server) signToken(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	ss, err := t.SignedString(s.opts.Secret)
	return ss, exp, err
}

// parseToken verifies tok and returns the session ID it grants.
func (s *Server) parseToken(tok string) (string, error) {
	claims := &sessionClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !t.Valid || claims.SID == "" {
		return "", errors.New("invalid token")
	}
	return claims.SID, nil
}

// bearer extracts a bearer token from the Authorization header.
func bearer(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}

// requireSession enforces a token for the {id} in the path and injects the
// session into the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearer(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		sid, err := s.parseToken(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if sid != chi.URLParam(r, "id") {
			writeError(w, http.StatusForbidden, "token does not grant this session")
			return
		}
		sess, err := s.loadSession(r.Context(), sid)
		if err != nil {
			writeFailure(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session placed by requireSession.
func sessionFrom(r *http.Request) *store.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*store.Session)
	return sess
}
