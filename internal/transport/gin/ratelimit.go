package ginserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// windowCounter increments the counter for key and returns the count within
// the current window.
type windowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisRateLimiter is a fixed-window limiter shared by every server instance
// pointing at the same Redis.
type RedisRateLimiter struct {
	counter  windowCounter
	limit    int
	window   time.Duration
	prefix   string
	failOpen bool
	log      *slog.Logger
}

var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

type redisCounter struct {
	rdb redis.Scripter
}

func (r redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = int64(time.Minute / time.Millisecond)
	}
	res, err := redisFixedWindowScript.Run(ctx, r.rdb, []string{key}, ms).Result()
	if err != nil {
		return 0, err
	}
	switch v := res.(type) {
	case int64:
		return v, nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis script result type %T", res)
	}
}

type RateLimitConfig struct {
	Limit    int
	Window   time.Duration
	Prefix   string
	FailOpen bool
}

func NewRedisRateLimiter(rdb redis.Scripter, cfg RateLimitConfig, log *slog.Logger) *RedisRateLimiter {
	return newRateLimiter(redisCounter{rdb: rdb}, cfg, log)
}

func newRateLimiter(counter windowCounter, cfg RateLimitConfig, log *slog.Logger) *RedisRateLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	cfg.Prefix = strings.TrimSpace(cfg.Prefix)
	if cfg.Prefix == "" {
		cfg.Prefix = "campsite:rl"
	}
	if log == nil {
		log = slog.Default()
	}
	return &RedisRateLimiter{
		counter:  counter,
		limit:    cfg.Limit,
		window:   cfg.Window,
		prefix:   cfg.Prefix,
		failOpen: cfg.FailOpen,
		log:      log.With(slog.String("component", "http.ratelimit")),
	}
}

func (rl *RedisRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.prefix + ":" + c.ClientIP()
		count, err := rl.counter.Incr(c.Request.Context(), key, rl.window)
		if err != nil {
			rl.log.Warn("redis rate limiter error", slog.Any("err", err))
			if rl.failOpen {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "rate limiter unavailable"})
			return
		}
		if count > int64(rl.limit) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
