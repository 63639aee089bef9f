// Package guard holds the request gatekeeping that runs before any handler:
// body size, content type, login rate limiting and bearer identity. Each
// guard is a decision over a transport-neutral Request; the Pipeline applies
// them in a fixed order.
package guard

import (
	"context"
	"net/http"
)

// Request describes an inbound request as far as the guards care.
type Request struct {
	Method string
	Path   string
	// ContentLength is the declared body size, -1 when unknown.
	ContentLength int64
	ContentType   string
	Authorization string
	// ClientKey buckets rate-limit counters, see ClientKey.
	ClientKey string
}

// ErrorBody is the JSON error envelope written for rejections.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Rejection is a terminal response produced by a guard.
type Rejection struct {
	Status int
	Body   ErrorBody
	Header http.Header
}

// Decision is the outcome of a single guard: pass (possibly with an enriched
// context) or reject.
type Decision struct {
	ctx       context.Context
	rejection *Rejection
}

// Pass lets the request through carrying ctx.
func Pass(ctx context.Context) Decision {
	return Decision{ctx: ctx}
}

// Reject stops the request with status and body.
func Reject(status int, body ErrorBody) Decision {
	return Decision{rejection: &Rejection{Status: status, Body: body}}
}

// WithHeader adds a response header to a rejecting decision.
func (d Decision) WithHeader(key, value string) Decision {
	if d.rejection == nil {
		return d
	}
	if d.rejection.Header == nil {
		d.rejection.Header = http.Header{}
	}
	d.rejection.Header.Set(key, value)
	return d
}

// Rejection returns the rejection, nil when the decision passed.
func (d Decision) Rejection() *Rejection {
	return d.rejection
}

// Context returns the context to continue with after a pass.
func (d Decision) Context() context.Context {
	return d.ctx
}

// Guard decides whether a request may proceed.
type Guard interface {
	Decide(ctx context.Context, req *Request) Decision
}
