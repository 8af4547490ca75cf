package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/cinema-booking-engine/internal/config"
)

// captureWriter copies the response body while forwarding it to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    limit  int
    over   bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.over {
        if cw.limit > 0 && cw.buf.Len()+len(b) > cw.limit {
            cw.over = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is what the cache stores per key.
type cachedResponse struct {
    Status      int    `json:"status"`
    ContentType string `json:"content_type"`
    Body        []byte `json:"body"`
}

// ResponseCache caches successful GET responses in Redis, keyed by request
// path and query.  Keys of one path are indexed in a set so that a write to
// the underlying resource can drop every cached variant with Invalidate.
// A nil *ResponseCache, or one without a Redis client, is a no-op.
type ResponseCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
    log *zap.Logger
}

// NewResponseCache creates a ResponseCache.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) *ResponseCache {
    if log == nil {
        log = zap.NewNop()
    }
    if cfg.TTL <= 0 {
        cfg.TTL = 5 * time.Minute
    }
    return &ResponseCache{cfg: cfg, rdb: rdb, log: log}
}

func (rc *ResponseCache) enabled() bool {
    return rc != nil && rc.cfg.Enabled && rc.rdb != nil
}

func (rc *ResponseCache) indexKey(path string) string {
    return rc.cfg.Prefix + ":idx:" + path
}

func (rc *ResponseCache) entryKey(r *http.Request) string {
    sum := sha1.Sum([]byte(r.Method + " " + r.URL.Path + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s:%x", rc.cfg.Prefix, sum[:])
}

// Middleware serves hits from Redis and stores 200 responses on a miss.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
    if !rc.enabled() {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            if !rc.cfg.Methods[strings.ToUpper(req.Method)] {
                return next(c)
            }
            ctx := req.Context()
            key := rc.entryKey(req)

            if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
                var hit cachedResponse
                if json.Unmarshal(bs, &hit) == nil {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(hit.Status, hit.ContentType, hit.Body)
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.over {
                return nil
            }
            payload, err := json.Marshal(cachedResponse{
                Status:      cw.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        cw.buf.Bytes(),
            })
            if err != nil {
                return nil
            }
            // the request context may already be done once the body is written
            storeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
            defer cancel()
            pipe := rc.rdb.TxPipeline()
            pipe.SetEx(storeCtx, key, payload, rc.cfg.TTL)
            pipe.SAdd(storeCtx, rc.indexKey(req.URL.Path), key)
            pipe.Expire(storeCtx, rc.indexKey(req.URL.Path), rc.cfg.TTL)
            if _, err := pipe.Exec(storeCtx); err != nil {
                rc.log.Warn("cache: store failed", zap.String("path", req.URL.Path), zap.Error(err))
            }
            return nil
        }
    }
}

// Invalidate drops every cached response for path.
func (rc *ResponseCache) Invalidate(ctx context.Context, path string) {
    if !rc.enabled() {
        return
    }
    idx := rc.indexKey(path)
    keys, err := rc.rdb.SMembers(ctx, idx).Result()
    if err != nil {
        rc.log.Warn("cache: invalidate failed", zap.String("path", path), zap.Error(err))
        return
    }
    if err := rc.rdb.Del(ctx, append(keys, idx)...).Err(); err != nil {
        rc.log.Warn("cache: invalidate failed", zap.String("path", path), zap.Error(err))
    }
}
