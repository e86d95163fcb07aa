package middlewares

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Too many requests"

type KeyFunc func(r *http.Request) string

// PerIPKey buckets callers by client address.
func PerIPKey(prefix string) KeyFunc {
	return func(r *http.Request) string {
		ip := clientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return prefix + ":" + ip
	}
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For may be a list: client, proxy1, proxy2...
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// LimitHook is told about every rejected request, e.g. to count it.
type LimitHook func(backend string)

func reject(w http.ResponseWriter, retryAfter time.Duration) {
	sec := int64(math.Ceil(retryAfter.Seconds()))
	if sec < 1 {
		sec = 1
	}
	w.Header().Set("Retry-After", strconv.FormatInt(sec, 10))
	httpx.WriteError(w, http.StatusTooManyRequests, msgTooManyRequests)
}

// --------- Token bucket in Redis (shared across replicas) ---------

const tokenBucketLua = `
-- KEYS[1] = bucket key (hash: tokens, ts)
-- ARGV[1] = refill rate per second
-- ARGV[2] = capacity
-- returns {allowed, remaining, retry_after_ms}
local key  = KEYS[1]
local rate = tonumber(ARGV[1])
local cap  = tonumber(ARGV[2])

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts     = tonumber(data[2])
if tokens == nil then
  tokens = cap
  ts = now_ms
end

local delta_ms = now_ms - ts
if delta_ms > 0 then
  tokens = math.min(cap, tokens + (delta_ms / 1000.0) * rate)
end

local allowed = 0
local retry_after_ms = 0
if tokens >= 1.0 then
  tokens = tokens - 1.0
  allowed = 1
else
  retry_after_ms = math.ceil((1.0 - tokens) * 1000.0 / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now_ms)
redis.call('PEXPIRE', key, math.ceil((cap / rate) * 1000.0))

return {allowed, math.floor(tokens), retry_after_ms}
`

type RedisTokenBucket struct {
	rdb      redis.Scripter
	keyFn    KeyFunc
	ratePerS float64
	burst    int
	script   *redis.Script
	log      *slog.Logger
	onLimit  LimitHook
}

func NewRedisTokenBucket(rdb redis.Scripter, ratePerSecond float64, burst int, keyFn KeyFunc, log *slog.Logger, onLimit LimitHook) *RedisTokenBucket {
	return &RedisTokenBucket{
		rdb:      rdb,
		keyFn:    keyFn,
		ratePerS: ratePerSecond,
		burst:    burst,
		script:   redis.NewScript(tokenBucketLua),
		log:      log,
		onLimit:  onLimit,
	}
}

// Middleware fails open: a Redis error lets the request through.
func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := tb.keyFn(r)
		res, err := tb.script.Run(r.Context(), tb.rdb, []string{key},
			strconv.FormatFloat(tb.ratePerS, 'f', -1, 64),
			strconv.Itoa(tb.burst),
		).Int64Slice()
		if err != nil || len(res) != 3 {
			tb.log.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
				"key", key, "err", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(tb.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res[1], 10))
		if res[0] != 1 {
			tb.log.InfoContext(r.Context(), "rate limited", "backend", "redis", "key", key)
			if tb.onLimit != nil {
				tb.onLimit("redis")
			}
			reject(w, time.Duration(res[2])*time.Millisecond)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------- Token bucket in process (single replica / no Redis) ---------

type localEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

type LocalTokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*localEntry
	limit   rate.Limit
	burst   int
	keyFn   KeyFunc
	idleTTL time.Duration
	swept   time.Time
	now     func() time.Time
	log     *slog.Logger
	onLimit LimitHook
}

func NewLocalTokenBucket(ratePerSecond float64, burst int, keyFn KeyFunc, log *slog.Logger, onLimit LimitHook) *LocalTokenBucket {
	return &LocalTokenBucket{
		buckets: make(map[string]*localEntry),
		limit:   rate.Limit(ratePerSecond),
		burst:   burst,
		keyFn:   keyFn,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		log:     log,
		onLimit: onLimit,
	}
}

func (lb *LocalTokenBucket) reserve(key string) (ok bool, remaining int, retry time.Duration) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	now := lb.now()
	if now.Sub(lb.swept) > lb.idleTTL {
		for k, e := range lb.buckets {
			if now.Sub(e.seen) > lb.idleTTL {
				delete(lb.buckets, k)
			}
		}
		lb.swept = now
	}

	e, found := lb.buckets[key]
	if !found {
		e = &localEntry{lim: rate.NewLimiter(lb.limit, lb.burst)}
		lb.buckets[key] = e
	}
	e.seen = now

	res := e.lim.ReserveN(now, 1)
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, 0, d
	}
	return true, int(e.lim.TokensAt(now)), 0
}

func (lb *LocalTokenBucket) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := lb.keyFn(r)
		ok, remaining, retry := lb.reserve(key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(lb.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		if !ok {
			lb.log.InfoContext(r.Context(), "rate limited", "backend", "local", "key", key)
			if lb.onLimit != nil {
				lb.onLimit("local")
			}
			reject(w, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}
