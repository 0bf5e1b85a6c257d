package rest

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type contextKey int

const userIdKey contextKey = 0

// RequireAuth is the authorization gate. It looks for a candidate token in
// the access cookie first, then in the Authorization header, verifies it as
// an access token and attaches the subject id to the request context.
// Registration, login and refresh are never wrapped by it.
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			h.sendError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		userId, _, err := h.Service.VerifyAccessToken(token)
		if err != nil {
			h.sendError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIdKey, userId)
		next(w, r.WithContext(ctx))
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}

func userIdFromContext(ctx context.Context) string {
	userId, _ := ctx.Value(userIdKey).(string)
	return userId
}

// CookieConfig carries the deployment-level cookie attributes. Cross-origin
// deployments need SameSite=None, and browsers only accept that together
// with Secure.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
}

// setTokenCookie and clearTokenCookie must agree on name, path and
// attributes: a clear with a mismatched attribute set is silently ignored
// by browsers.
func (h *Handler) setTokenCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: h.Cookies.SameSite,
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cookies.Secure,
		SameSite: h.Cookies.SameSite,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
