package guard

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/logging"
	"github.com/dmitrijs2005/securepass/internal/server/auth"
)

var errUnauthorized = ErrorBody{
	Error:   "Unauthorized",
	Message: "Invalid or expired token",
}

// TokenVerifier returns the subject of a valid bearer token.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// PrincipalResolver loads the live account behind a token subject. It
// returns common.ErrorNotFound when the account no longer exists.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (auth.Principal, error)
}

// Identity authenticates bearer tokens. Requests without a bearer header
// pass anonymously; handlers that need a caller check the context.
type Identity struct {
	tokens TokenVerifier
	users  PrincipalResolver
	log    logging.Logger
}

func NewIdentity(tokens TokenVerifier, users PrincipalResolver, log logging.Logger) *Identity {
	return &Identity{tokens: tokens, users: users, log: log.With("module", "identity")}
}

func (g *Identity) Decide(ctx context.Context, req *Request) Decision {
	if !strings.HasPrefix(req.Authorization, common.BearerPrefix) {
		return Pass(ctx)
	}

	p, err := g.authenticate(ctx, strings.TrimPrefix(req.Authorization, common.BearerPrefix))
	if err != nil {
		g.log.Debug(ctx, "bearer token rejected", "reason", err)
		return Reject(http.StatusUnauthorized, errUnauthorized)
	}

	return Pass(auth.WithPrincipal(ctx, p))
}

func (g *Identity) authenticate(ctx context.Context, token string) (p auth.Principal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during token verification: %v", r)
		}
	}()

	userID, err := g.tokens.Verify(strings.TrimSpace(token))
	if err != nil {
		return auth.Principal{}, err
	}

	p, err = g.users.ResolvePrincipal(ctx, userID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("resolve %s: %w", userID, err)
	}
	return p, nil
}
