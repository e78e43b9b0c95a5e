package main

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/session"
)

const sessionCookieName = "marges_session"

type sessionKey struct{}

// cookieSigner signs session IDs so a client cannot pick another client's
// session.
type cookieSigner struct {
	secret []byte
	secure bool
}

// newCookieSigner uses secret, or a random key when secret is empty. With a
// random key every cookie is invalidated on restart.
func newCookieSigner(secret string, secure bool) (*cookieSigner, error) {
	key := []byte(secret)
	if secret == "" {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	return &cookieSigner{secret: key, secure: secure}, nil
}

func (c *cookieSigner) createSessionValue(id string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(id))
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return payload + "." + signature
}

func (c *cookieSigner) verifySessionValue(value string) (string, bool) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok {
		return "", false
	}

	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, expected) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	id := string(decoded)
	if !session.ValidID(id) {
		return "", false
	}

	return id, true
}

func (c *cookieSigner) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.createSessionValue(id),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionMiddleware attaches a session ID to every request, issuing a new
// cookie when the client has none or presents a tampered one.
func (s *server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id, _ = s.cookies.verifySessionValue(cookie.Value)
		}
		if id == "" {
			id = session.NewID()
			s.cookies.setSessionCookie(w, id)
			s.logger.Debug("new session issued", zap.String("session", id))
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey{}).(string)
	return id
}
