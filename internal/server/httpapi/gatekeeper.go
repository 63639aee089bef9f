package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/server/guard"
)

// Gatekeeper runs the guard pipeline in front of every route. The response
// content type is normalized before any guard runs, rejections are written
// directly, and passing requests continue with the context the pipeline
// produced. Bodies are capped at maxBody while they are read.
func Gatekeeper(p *guard.Pipeline, maxBody int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", guard.ResponseContentType)

			ctx, rej := p.Run(r.Context(), describe(r))
			if rej != nil {
				writeRejection(w, rej)
				return
			}

			if r.Body != nil && maxBody > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBody)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func describe(r *http.Request) *guard.Request {
	return &guard.Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		ContentLength: r.ContentLength,
		ContentType:   r.Header.Get("Content-Type"),
		Authorization: r.Header.Get(common.AuthorizationHeaderName),
		ClientKey:     guard.ClientKey(r),
	}
}
