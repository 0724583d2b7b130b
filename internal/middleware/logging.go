package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"nutrition-assistant/internal/infra/logger"

	"github.com/google/uuid"
)

func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/healthCheck") {
				next.ServeHTTP(w, r)
				return
			}

			requestID := uuid.NewString()
			w.Header().Set("X-Request-Id", requestID)

			wrappedWriter := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(wrappedWriter, r)

			log.Info(fmt.Sprintf("Request: %s %s from %s - %d - %s [%s]",
				r.Method, r.URL.Path, r.RemoteAddr, wrappedWriter.statusCode, time.Since(start), requestID))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
