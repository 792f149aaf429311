package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// forEachSymbol runs fn for every symbol with at most workers calls in
// flight and returns results indexed like symbols.
//
// With isolate, a failing symbol leaves its error in errs and the others
// continue. Without it, the first error cancels the remaining calls and is
// returned.
func forEachSymbol[T any](
	ctx context.Context,
	workers int,
	symbols []entity.Symbol,
	isolate bool,
	fn func(ctx context.Context, sym entity.Symbol) (T, error),
) (results []T, errs []error, err error) {
	results = make([]T, len(symbols))
	errs = make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))
	for i, sym := range symbols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, sym)
			if err != nil {
				if isolate {
					errs[i] = err
					return nil
				}
				return fmt.Errorf("%s: %w", sym.Code, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, errs, nil
}
