// Package repomanager vends repositories bound to a database handle and
// owns schema migrations and transactions for the selected backend.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/securepass/internal/dbx"
	"github.com/dmitrijs2005/securepass/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/securepass/internal/server/repositories/users"
)

type RepositoryManager interface {
	dbx.Transactor

	RunMigrations(ctx context.Context) error
	// Conn is the non-transactional handle to pass to the factories.
	Conn() dbx.DBTX
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
