package guard

import (
	"context"
	"fmt"
	"net/http"
)

// DefaultMaxBodyBytes is the request body ceiling (10 MiB).
const DefaultMaxBodyBytes int64 = 10 << 20

// BodySize rejects requests whose declared length exceeds Limit. A request
// without a declared length passes; the transport enforces the ceiling while
// the body is read.
type BodySize struct {
	Limit int64
}

func NewBodySize(limit int64) *BodySize {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return &BodySize{Limit: limit}
}

func (g *BodySize) Decide(ctx context.Context, req *Request) Decision {
	if req.ContentLength > g.Limit {
		return Reject(http.StatusRequestEntityTooLarge, PayloadTooLarge(g.Limit))
	}
	return Pass(ctx)
}

// PayloadTooLarge is the 413 body for a ceiling of limit bytes. The HTTP
// layer reuses it when a body without a declared length overruns.
func PayloadTooLarge(limit int64) ErrorBody {
	return ErrorBody{
		Error:   "Payload Too Large",
		Message: fmt.Sprintf("Request payload exceeds maximum allowed size of %s", humanSize(limit)),
	}
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}
