package cli

import (
	"context"
	"log/slog"

	"biblio/internal/engine"
	"biblio/internal/idgen"
	"biblio/internal/store"
)

// session bundles an open store with an engine restored from its snapshot.
// Each CLI invocation is one session: open, restore, sweep, run one
// operation, close.
type session struct {
	store *store.Store
	eng   *engine.Engine
	swept int
}

// openSession opens the snapshot database, restores the engine, and runs
// the session-start reservation sweep so stale holds are resolved before
// the requested operation sees them.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	snap, err := st.LoadAll(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "load snapshot", err)
	}

	eng := engine.New(st, idgen.New())
	eng.Restore(snap)

	expired, err := eng.SweepExpiredReservations(ctx)
	if err != nil {
		// The sweep's in-memory effect stands even if its checkpoint failed;
		// the next successful mutation persists it.
		slog.Warn("session-start sweep checkpoint failed", "error", err)
	} else if expired > 0 {
		slog.Info("session-start sweep", "expired", expired)
	}

	return &session{store: st, eng: eng, swept: expired}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
