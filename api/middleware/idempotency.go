package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	pkgredis "github.com/danielcastellanos/peptidehub-backend/pkg/redis"

	"github.com/danielcastellanos/peptidehub-backend/api/responses"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

type idempotencyRule struct {
	method string
	match  func(path string) bool
}

func matchExact(want string) func(string) bool {
	return func(path string) bool { return path == want }
}

func matchPrefixSuffix(prefix, suffix string) func(string) bool {
	return func(path string) bool {
		return strings.HasPrefix(path, prefix) && strings.HasSuffix(path, suffix)
	}
}

// Writes that create money-bearing or stateful records must be safe to retry.
var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, match: matchExact("/api/v1/group-orders")},
	{method: http.MethodPost, match: matchExact("/api/v1/host/batches")},
	{method: http.MethodPost, match: matchPrefixSuffix("/api/v1/host/batches/", "/close")},
	{method: http.MethodPost, match: matchPrefixSuffix("/api/v1/host/batches/", "/cancel")},
}

func requiresIdempotencyKey(r *http.Request) bool {
	for _, rule := range idempotencyRules {
		if r.Method == rule.method && rule.match(r.URL.Path) {
			return true
		}
	}
	return false
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (c *responseCapture) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for repeated writes carrying the
// same Idempotency-Key, scoped per caller and route.
func Idempotency(store pkgredis.KVStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresIdempotencyKey(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header is required"))
				return
			}

			scope := buildIdempotencyScope(r, key)
			redisKey := pkgredis.IdempotencyKey(scope, requestHash(r))

			ctx := r.Context()
			if raw, err := store.Get(ctx, redisKey); err == nil {
				var stored storedResponse
				if jsonErr := json.Unmarshal([]byte(raw), &stored); jsonErr == nil {
					w.Header().Set("Content-Type", "application/json")
					w.Header().Set("X-Idempotent-Replay", "true")
					w.WriteHeader(stored.Status)
					_, _ = w.Write(stored.Body)
					return
				}
			} else if !errors.Is(err, pkgredis.ErrNotFound) {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "idempotency lookup failed")
			}

			capture := &responseCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)

			if capture.status >= http.StatusOK && capture.status < http.StatusBadRequest {
				stored := storedResponse{Status: capture.status, Body: capture.buf.Bytes()}
				if payload, err := json.Marshal(stored); err == nil {
					if _, err := store.SetNX(r.Context(), redisKey, string(payload), idempotencyTTL); err != nil {
						logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "idempotency store failed")
					}
				}
			}
		})
	}
}

func buildIdempotencyScope(r *http.Request, key string) string {
	caller := "anonymous"
	if id, ok := IdentityFromContext(r.Context()); ok && id.ExternalID != "" {
		caller = id.ExternalID
	}
	return fmt.Sprintf("%s|%s|%s|%s", caller, r.Method, r.URL.Path, key)
}

func requestHash(r *http.Request) string {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		body = nil
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
