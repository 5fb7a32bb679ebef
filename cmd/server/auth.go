package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "weddingquote_session"
	sessionTTL        = 12 * time.Hour
)

var errInvalidSession = errors.New("invalid or expired session")

type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type authService struct {
	sessionSecret []byte
	ttl           time.Duration
	now           func() time.Time
}

func newAuthService(sessionSecret string, ttl time.Duration) *authService {
	return &authService{sessionSecret: []byte(sessionSecret), ttl: ttl, now: time.Now}
}

func (a *authService) createSessionValue(userID int64, email string) (string, error) {
	now := a.now()
	claims := &sessionClaims{
		UserID: strconv.FormatInt(userID, 10),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (a *authService) verifySessionValue(value string) (*sessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.sessionSecret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidSession, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, errInvalidSession
	}
	return claims, nil
}

func (a *authService) setSessionCookie(w http.ResponseWriter, userID int64, email string) error {
	value, err := a.createSessionValue(userID, email)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (a *authService) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type adminContextKey struct{}

// requireAdmin sends page requests without a valid session to the login
// form and answers everything else with 401.
func (a *authService) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		var claims *sessionClaims
		if err == nil {
			claims, err = a.verifySessionValue(cookie.Value)
		}
		if err != nil {
			if r.Method == http.MethodGet {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey{}, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func adminEmail(ctx context.Context) string {
	email, _ := ctx.Value(adminContextKey{}).(string)
	return email
}
