package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tomasen/realip"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/ctxstore"
)

const (
	_traceIDKey = ctxstore.Key("traceId")
	_userKey    = ctxstore.Key("user")

	RoleAdmin = "admin"
)

// User is the caller identified by the bearer token
type User struct {
	ID   string
	Role string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Claims are the JWT claims the API reads: sub is the user id
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

func (s *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := r.Header.Get("X-Request-Id")
		if tid == "" {
			tid = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", tid)

		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code and body size for the access log
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (s *Server) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		tid, _ := ctxstore.From[string](r.Context(), _traceIDKey)
		s.logger.Info("access",
			zap.String("ip", realip.FromRequest(r)),
			zap.String("method", r.Method),
			zap.String("url", r.URL.String()),
			zap.String("proto", r.Proto),
			zap.String(_traceIDKey.String(), tid),
			zap.Int("status", rec.status),
			zap.Int("size", rec.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.serverError(w, r, fmt.Errorf("panic: %v", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// authenticate verifies an HS256 bearer token signed with server.jwtSecret
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			s.unauthorized(w, r)
			return
		}

		var claims Claims
		_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
			return []byte(s.cfg.Server.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || claims.Subject == "" {
			s.logger.Debug("Rejected bearer token", zap.Error(err))
			s.unauthorized(w, r)
			return
		}

		user := User{ID: claims.Subject, Role: claims.Role}
		ctx := ctxstore.With(r.Context(), _userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			s.forbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) User {
	user, _ := ctxstore.From[User](r.Context(), _userKey)
	return user
}

// IssueToken signs a token for userID; used by the CLI to mint tokens for staff
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
