package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

const (
	contentTypeJSON = "application/json;charset=utf-8"
	cacheFor60s     = "max-age=60"
	cacheNever      = "no-cache, no-store"

	creationErrorMessage = "Response creation error"
)

var ErrAlreadySent = errors.New("httpx: response already sent")

// envelope is the wire shape of every response. Field order is the key order.
type envelope struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	BookInfo   any      `json:"bookInfo,omitempty"`
	Messages   []string `json:"messages,omitempty"`
}

// Response collects the outcome of one request and is sent exactly once.
// Status code and success flag must both be set before Send, otherwise the
// client receives the fixed "Response creation error" envelope.
type Response struct {
	statusCode *int
	success    *bool
	messages   []string
	payload    any
	hasPayload bool
	cacheable  bool
	headers    http.Header
	sent       bool
}

func NewResponse() *Response {
	return &Response{headers: http.Header{}}
}

// Error is shorthand for a failed response carrying msgs.
func Error(status int, msgs ...string) *Response {
	r := NewResponse()
	r.SetHTTPStatusCode(status)
	r.SetSuccess(false)
	for _, m := range msgs {
		r.AddMessage(m)
	}
	return r
}

func (r *Response) SetHTTPStatusCode(code int) { r.statusCode = &code }
func (r *Response) SetSuccess(ok bool)         { r.success = &ok }
func (r *Response) AddMessage(msg string)      { r.messages = append(r.messages, msg) }
func (r *Response) SetCacheable(cacheable bool) {
	r.cacheable = cacheable
}

func (r *Response) SetPayload(data any) {
	r.payload = data
	r.hasPayload = true
}

// SetHeader adds an extra response header, e.g. Allow on a 405.
func (r *Response) SetHeader(key, value string) {
	if r.headers == nil {
		r.headers = http.Header{}
	}
	r.headers.Set(key, value)
}

// StatusCode reports the code Send will write.
func (r *Response) StatusCode() int {
	if !r.valid() {
		return http.StatusInternalServerError
	}
	return *r.statusCode
}

func (r *Response) Messages() []string { return r.messages }

func (r *Response) valid() bool {
	return r.statusCode != nil && r.success != nil && *r.statusCode >= 100 && *r.statusCode <= 599
}

func (r *Response) body() envelope {
	if !r.valid() {
		return envelope{
			StatusCode: http.StatusInternalServerError,
			Success:    false,
			Messages:   []string{creationErrorMessage},
		}
	}
	env := envelope{StatusCode: *r.statusCode, Success: *r.success}
	if r.hasPayload {
		env.BookInfo = r.payload
	}
	if len(r.messages) > 0 {
		env.Messages = r.messages
	}
	return env
}

// Send writes headers and the JSON envelope. A second call writes nothing.
func (r *Response) Send(w http.ResponseWriter) error {
	if r.sent {
		return ErrAlreadySent
	}
	r.sent = true

	for k, vs := range r.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	if r.cacheable {
		w.Header().Set("Cache-Control", cacheFor60s)
	} else {
		w.Header().Set("Cache-Control", cacheNever)
	}

	env := r.body()
	out, err := json.Marshal(env)
	if err != nil {
		// payload could not be encoded; fall back to the fixed error shape
		env = envelope{StatusCode: http.StatusInternalServerError, Messages: []string{creationErrorMessage}}
		out, _ = json.Marshal(env)
	}
	w.WriteHeader(env.StatusCode)
	_, err = w.Write(out)
	return err
}

// WriteError sends a one-off failure envelope. Middlewares use it so that even
// rejected requests get the same body shape as the handlers.
func WriteError(w http.ResponseWriter, status int, msg string) {
	_ = Error(status, msg).Send(w)
}
