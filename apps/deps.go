package apps

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/repostnet/core"
	"github.com/trezcool/repostnet/core/member"
	"github.com/trezcool/repostnet/core/submission"
	schedulesvc "github.com/trezcool/repostnet/services/schedule"
	"github.com/trezcool/repostnet/storage/database"
	inmemdb "github.com/trezcool/repostnet/storage/database/inmem"
	sqlxrepos "github.com/trezcool/repostnet/storage/database/sqlx"
)

// EngineMemory selects the in-memory repositories instead of Postgres.
const EngineMemory = "memory"

// Deps holds the services shared by the API and the admin CLI.
type Deps struct {
	DB             *sqlx.DB // nil with the in-memory engine
	MemberRepo     member.Repository
	SubmissionRepo submission.Repository
	MemberSvc      *member.Service
	SubmissionSvc  *submission.Service
}

// Setup opens the configured storage and wires the services on top of it.
// migrate runs the pending migrations on Postgres.
func Setup(ctx context.Context, conf *core.Config, logger core.Logger, migrate bool) (*Deps, error) {
	deps := new(Deps)

	if conf.Database.Engine == EngineMemory {
		db := inmemdb.Open()
		deps.MemberRepo = inmemdb.NewMemberRepository(db)
		deps.SubmissionRepo = inmemdb.NewSubmissionRepository(db)
	} else {
		db, err := setUpDB(ctx, conf, migrate)
		if err != nil {
			return nil, errors.Wrap(err, "setting up database")
		}
		deps.DB = db
		deps.MemberRepo = sqlxrepos.NewMemberRepository(db)
		deps.SubmissionRepo = sqlxrepos.NewSubmissionRepository(db)
	}

	var scheduler submission.Scheduler
	if conf.Scheduler.FunctionURL != "" {
		scheduler = schedulesvc.NewFunctionClient(conf.Scheduler, logger)
	} else {
		scheduler = schedulesvc.NewConsoleScheduler(logger)
	}

	deps.MemberSvc = member.NewService(deps.MemberRepo, conf.Selection)
	deps.SubmissionSvc = submission.NewService(deps.SubmissionRepo, deps.MemberSvc, scheduler, conf.Selection)
	return deps, nil
}

func (d *Deps) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

func setUpDB(ctx context.Context, conf *core.Config, migrate bool) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(ctx, db, 10); err != nil {
		_ = db.Close()
		return nil, err
	}

	if migrate {
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
