package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/models"
)

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}

		// Propagate request ID downstream
		r.Header.Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)

		logger.Log.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"remote_addr": r.RemoteAddr,
			"request_id":  reqID,
			"duration":    time.Since(start).Milliseconds(),
		}).Info("HTTP request")
	})
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Log.WithField("error", err).Error("Panic recovered")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// RequireAdminKey guards admin-only endpoints with the configured API key.
func RequireAdminKey(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expectedKey == "" || !adminKeyMatches(r, expectedKey) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Requester builds the caller identity from request headers. The admin
// capability is granted only when the x-admin flag is accompanied by a valid
// admin API key; the flag alone carries no privilege.
func Requester(r *http.Request, adminKey string) *models.Requester {
	userID := r.Header.Get("x-requester-id")
	admin := r.Header.Get("x-admin") == "true" && adminKey != "" && adminKeyMatches(r, adminKey)
	if userID == "" && !admin {
		return nil
	}
	return &models.Requester{UserID: userID, Admin: admin}
}

func adminKeyMatches(r *http.Request, expected string) bool {
	key := r.Header.Get("x-api-key")
	return subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}
