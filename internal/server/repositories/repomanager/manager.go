package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/researchdt/internal/dbx"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/researchdt/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
}
