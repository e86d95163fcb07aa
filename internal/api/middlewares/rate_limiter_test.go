package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/books-crud/internal/api/middlewares"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestPerIPKey(t *testing.T) {
	key := mw.PerIPKey("rl")

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "rl:10.0.0.7", key(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "rl:203.0.113.9", key(req))
}

func TestLocalTokenBucket(t *testing.T) {
	var limited []string
	lb := mw.NewLocalTokenBucket(0.001, 2, mw.PerIPKey("rl"), discard(), func(b string) { limited = append(limited, b) })
	h := lb.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			assert.JSONEq(t, `{"statusCode":429,"success":false,"messages":["Too many requests"]}`, rec.Body.String())
		}
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, []string{"local"}, limited)

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.RemoteAddr = "10.0.0.8:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// fakeScripter answers EVALSHA with a canned reply.
type fakeScripter struct {
	reply []any
	err   error
	calls int
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, "", keys, args...)
}

func (f *fakeScripter) EvalSha(context.Context, string, []string, ...any) *redis.Cmd {
	f.calls++
	return redis.NewCmdResult(f.reply, f.err)
}

func (f *fakeScripter) EvalRO(ctx context.Context, s string, keys []string, args ...any) *redis.Cmd {
	return f.Eval(ctx, s, keys, args...)
}

func (f *fakeScripter) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, sha, keys, args...)
}

func (f *fakeScripter) ScriptExists(context.Context, ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult([]bool{true}, nil)
}

func (f *fakeScripter) ScriptLoad(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("sha", nil)
}

func TestRedisTokenBucket_Allows(t *testing.T) {
	rdb := &fakeScripter{reply: []any{int64(1), int64(7), int64(0)}}
	tb := mw.NewRedisTokenBucket(rdb, 5, 20, mw.PerIPKey("rl"), discard(), nil)

	rec := httptest.NewRecorder()
	tb.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "7", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRedisTokenBucket_Blocks(t *testing.T) {
	rdb := &fakeScripter{reply: []any{int64(0), int64(0), int64(1500)}}
	var limited []string
	tb := mw.NewRedisTokenBucket(rdb, 5, 20, mw.PerIPKey("rl"), discard(), func(b string) { limited = append(limited, b) })

	rec := httptest.NewRecorder()
	tb.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, []string{"redis"}, limited)
}

func TestRedisTokenBucket_FailsOpen(t *testing.T) {
	rdb := &fakeScripter{err: errors.New("connection refused")}
	tb := mw.NewRedisTokenBucket(rdb, 5, 20, mw.PerIPKey("rl"), discard(), nil)

	rec := httptest.NewRecorder()
	tb.Middleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
