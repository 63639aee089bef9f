package guard

import (
	"context"
	"net/http"
	"strings"
)

// ResponseContentType is set on every API response.
const ResponseContentType = "application/json;charset=UTF-8"

var errUnsupportedMediaType = ErrorBody{
	Error:   "Unsupported Media Type",
	Message: "Content-Type must be application/json",
}

// ContentType requires a JSON or multipart body on POST, PUT and PATCH.
type ContentType struct{}

func (ContentType) Decide(ctx context.Context, req *Request) Decision {
	if !carriesBody(req.Method) {
		return Pass(ctx)
	}

	ct := strings.ToLower(strings.TrimSpace(req.ContentType))
	if ct == "" {
		return Reject(http.StatusUnsupportedMediaType, errUnsupportedMediaType)
	}
	if !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "multipart/") {
		return Reject(http.StatusUnsupportedMediaType, errUnsupportedMediaType)
	}
	return Pass(ctx)
}

func carriesBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
