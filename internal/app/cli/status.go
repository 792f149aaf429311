package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stock_ingest/internal/app/di"
	"stock_ingest/internal/feature/ingest/domain/entity"
	"stock_ingest/internal/feature/ingest/usecase"
	"stock_ingest/internal/platform/db"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <run-id>",
		Short: "Show the stored payload of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.readBack(cmd.Context(), args[0], false)
		},
	}
}

func newDBCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "db-check <run-id>",
		Short: "Show a run with live row counts of the records it wrote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.readBack(cmd.Context(), args[0], true)
		},
	}
}

// readBack prints a stored run, adding live counts when withCounts is set.
func (a *app) readBack(ctx context.Context, runID string, withCounts bool) error {
	ctx, cancel := context.WithTimeout(ctx, a.settings.Timeout)
	defer cancel()

	gdb, err := di.NewDB(a.settings)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close(gdb) }()

	uc := di.NewStatusUsecase(gdb)
	if withCounts {
		run, counts, err := uc.DBCheck(ctx, runID)
		if err != nil {
			return a.readBackFailed(runID, err)
		}
		p := a.foundPayload(run)
		p.DBCheck = &counts
		return a.print(p)
	}

	run, err := uc.Status(ctx, runID)
	if err != nil {
		return a.readBackFailed(runID, err)
	}
	return a.print(a.foundPayload(run))
}

// foundPayload reports a stored run. OK means the run exists; its outcome is
// in Status.
func (a *app) foundPayload(run *entity.Run) Payload {
	p := newPayload(run, a.settings.DB.Location())
	p.OK = true
	return p
}

func (a *app) readBackFailed(runID string, err error) error {
	if !errors.Is(err, usecase.ErrRunNotFound) {
		return err
	}
	err = fmt.Errorf("run_id not found: %s", runID)
	if perr := a.print(errorPayload{Error: err.Error()}); perr != nil {
		return perr
	}
	return &ExitError{Code: ExitFailed, Err: err}
}
