package usecase

import (
	"context"
	"fmt"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// SymbolResolver produces the working symbol set of a run.
type SymbolResolver struct {
	store    Store
	registry DisclosureProvider // nil when no DART key is configured
}

// NewSymbolResolver creates a SymbolResolver. registry may be nil.
func NewSymbolResolver(store Store, registry DisclosureProvider) *SymbolResolver {
	return &SymbolResolver{store: store, registry: registry}
}

// Resolve returns the ordered, de-duplicated symbols for cfg and the notes
// describing where they came from. Unusable configurations yield *ConfigError.
func (r *SymbolResolver) Resolve(ctx context.Context, cfg entity.RunConfig) ([]entity.Symbol, []string, error) {
	var (
		symbols []entity.Symbol
		notes   []string
	)

	switch cfg.Scope {
	case entity.ScopeSingle:
		codes := entity.NormalizeCodes(cfg.Symbols)
		if len(codes) == 0 {
			return nil, nil, &ConfigError{Message: "scope=single requires --symbol or --symbols"}
		}
		for _, code := range codes {
			symbols = append(symbols, entity.Symbol{Code: code})
		}
	case entity.ScopeAll:
		if r.registry != nil {
			corps, err := r.registry.ListCorporations(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve symbols via DART corpCode: %w", err)
			}
			symbols = uniqueSymbols(corps)
			notes = append(notes, fmt.Sprintf("all scope symbols resolved via DART corpCode: %d", len(symbols)))
		} else {
			stored, err := r.store.ListSymbols(ctx)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve symbols via store: %w", err)
			}
			symbols = uniqueSymbols(stored)
			if len(symbols) > 0 {
				notes = append(notes, fmt.Sprintf("all scope symbols resolved via store symbol_universe: %d", len(symbols)))
			}
		}
		if len(symbols) == 0 {
			return nil, notes, &ConfigError{Message: "scope=all found no symbol source: export DART_API_KEY or populate symbol_universe first"}
		}
	default:
		return nil, nil, &ConfigError{Message: fmt.Sprintf("unknown scope %q", cfg.Scope)}
	}

	if cfg.LimitSymbols > 0 && len(symbols) > cfg.LimitSymbols {
		dropped := len(symbols) - cfg.LimitSymbols
		symbols = symbols[:cfg.LimitSymbols]
		notes = append(notes, fmt.Sprintf("limit_symbols applied: kept=%d dropped=%d", len(symbols), dropped))
	}
	return symbols, notes, nil
}

// uniqueSymbols drops entries whose code does not normalize and keeps the
// first entry per code.
func uniqueSymbols(in []entity.Symbol) []entity.Symbol {
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.Symbol, 0, len(in))
	for _, s := range in {
		code, ok := entity.NormalizeCode(s.Code)
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		s.Code = code
		out = append(out, s)
	}
	return out
}
