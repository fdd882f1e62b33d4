package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"solarcredits-service/shared/response"
)

// RateLimiter allows limit requests per window per client and blocks offenders for blockDuration.
// Clients are keyed by user id when authenticated, otherwise by IP. Redis failures fail open.
func RateLimiter(rdb redis.Cmdable, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			key := keyPrefix + ":" + clientID(r)
			blockKey := key + ":blocked"

			// Already blocked?
			if blocked, _ := rdb.Get(ctx, blockKey).Result(); blocked == "1" {
				ttl, _ := rdb.TTL(ctx, blockKey).Result()
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+ttl.String())
				return
			}

			var incr *redis.IntCmd
			var ttl *redis.DurationCmd
			_, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				incr = pipe.Incr(ctx, key)
				pipe.ExpireNX(ctx, key, window)
				ttl = pipe.TTL(ctx, key)
				return nil
			})
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			count := incr.Val()
			if count > int64(limit) {
				rdb.Set(ctx, blockKey, "1", blockDuration)
				w.Header().Set("Retry-After", strconv.Itoa(int(blockDuration.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Blocked for "+blockDuration.String())
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-int(count)))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Val().Seconds())))

			next.ServeHTTP(w, r)
		})
	}
}

func clientID(r *http.Request) string {
	if userID, ok := GetUserID(r.Context()); ok {
		return "uid:" + userID
	}
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return "ip:" + strings.TrimSpace(strings.Split(ip, ",")[0])
}
