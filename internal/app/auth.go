package app

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
)

const tokenIssuer = "siakad"

// IssueToken signs an HS256 access token whose subject is the user id.
func IssueToken(secret []byte, userID int64, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies raw and returns the user id it was issued for.
func ParseToken(secret []byte, raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperr.Unauthenticated("Token has expired.")
		}
		return 0, apperr.Unauthenticated("Given token not valid.")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Unauthenticated("Token has no valid subject.")
	}
	return id, nil
}

// authenticate resolves the caller's role once per request. No header means
// Anonymous; a header that does not verify is rejected outright.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			s.fail(w, r, apperr.Unauthenticated("Authorization header must be 'Bearer <token>'."))
			return
		}
		uid, err := ParseToken(s.Secret, strings.TrimSpace(raw))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		role, err := s.ResolveRole(r.Context(), uid)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		ctx := ctxutil.WithUserID(r.Context(), uid)
		ctx = ctxutil.WithRole(ctx, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
