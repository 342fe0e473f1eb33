package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/groupcollect/groupcollect-backend/pkg/logger"
	pkgredis "github.com/groupcollect/groupcollect-backend/pkg/redis"
)

const cacheStatusHeader = "X-Cache"

type cachedPage struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body"`
}

// PageCache serves anonymous GET requests from Redis and stores successful
// responses for ttl. Writers invalidate the whole namespace via ClearCache.
func PageCache(store pkgredis.PageCache, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || ttl <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.Header.Get("Authorization") != "" {
				next.ServeHTTP(w, r)
				return
			}

			key := store.CacheKey("page", pageFingerprint(r))
			if stored, err := store.Get(r.Context(), key); err == nil && stored != "" {
				var page cachedPage
				if decodeErr := json.Unmarshal([]byte(stored), &page); decodeErr == nil {
					writeCachedPage(w, page)
					return
				}
			} else if err != nil && !errors.Is(err, redis.Nil) {
				logCacheError(r.Context(), logg, "page_cache.get", err)
			}

			rec := &responseCapture{ResponseWriter: w}
			w.Header().Set(cacheStatusHeader, "MISS")
			next.ServeHTTP(rec, r)

			if defaultStatus(rec.status) != http.StatusOK {
				return
			}
			payload, err := json.Marshal(cachedPage{
				Status:      http.StatusOK,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
			})
			if err != nil {
				logCacheError(r.Context(), logg, "page_cache.encode", err)
				return
			}
			if err := store.Set(r.Context(), key, string(payload), ttl); err != nil {
				logCacheError(r.Context(), logg, "page_cache.set", err)
			}
		})
	}
}

func pageFingerprint(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.URL.RequestURI()))
	return hex.EncodeToString(sum[:])
}

func writeCachedPage(w http.ResponseWriter, page cachedPage) {
	if page.ContentType != "" {
		w.Header().Set("Content-Type", page.ContentType)
	}
	w.Header().Set(cacheStatusHeader, "HIT")
	w.WriteHeader(page.Status)
	if decoded, err := base64.StdEncoding.DecodeString(page.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func logCacheError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil {
		return
	}
	logg.Warn(logg.WithField(ctx, "error", err.Error()), msg)
}
