package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/dentacare/clinic-api/internal/domain/entity"
	"github.com/dentacare/clinic-api/internal/domain/repository"
	"github.com/dentacare/clinic-api/internal/presentation/http/dto/response"
	"github.com/dentacare/clinic-api/pkg/apperror"
	"github.com/dentacare/clinic-api/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// DefaultIdempotencyTTL is how long keys are valid unless configured
	DefaultIdempotencyTTL = 24 * time.Hour
	maxIdempotencyKeyLen  = 255
)

// Idempotency replays the stored response of a write that was already
// processed under the same key. Only 2xx responses are stored so failed
// requests can be retried with the same key.
type Idempotency struct {
	repo     repository.IdempotencyRepository
	ttl      time.Duration
	inFlight sync.Map
}

// NewIdempotency creates the idempotency middleware
func NewIdempotency(repo repository.IdempotencyRepository, ttl time.Duration) *Idempotency {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &Idempotency{repo: repo, ttl: ttl}
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware applies idempotency to writes that carry a key; requests without
// one pass through unchanged.
func (m *Idempotency) Middleware() gin.HandlerFunc {
	log := logger.WithComponent("idempotency")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.BadRequest(c, "Idempotency-Key is too long")
			return
		}

		owner := ClientKey(c)
		endpoint := c.Request.Method + " " + c.Request.URL.Path

		existing, err := m.repo.GetByKey(c.Request.Context(), key, owner)
		if err != nil {
			response.Error(c, err)
			return
		}
		if existing != nil && !existing.IsExpired() {
			if existing.Endpoint != endpoint {
				response.ErrorWithCode(c, http.StatusUnprocessableEntity, apperror.KindValidation,
					"Idempotency-Key was already used for a different request")
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		slot := owner + "|" + key
		if _, busy := m.inFlight.LoadOrStore(slot, struct{}{}); busy {
			response.ErrorWithCode(c, http.StatusConflict, apperror.KindConflict,
				"A request with this Idempotency-Key is still being processed")
			return
		}
		defer m.inFlight.Delete(slot)

		// Capture the response
		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:          key,
			Owner:        owner,
			Endpoint:     endpoint,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(m.ttl),
		}
		if err := m.repo.Create(c.Request.Context(), ikey); err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to store idempotency key")
		}
	}
}
