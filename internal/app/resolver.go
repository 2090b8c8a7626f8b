package app

import (
	"context"
	"sort"
)

// lookupFunc turns a set of natural keys into key→id pairs; keys without a
// match are simply absent from the result.
type lookupFunc func(ctx context.Context, keys []string) (map[string]int64, error)

// resolveKeys collects the distinct non-empty candidates and runs one bulk
// lookup. An empty candidate set short-circuits without touching the store,
// so optional references never force a full-table read.
func resolveKeys(ctx context.Context, candidates []string, lookup lookupFunc) (map[string]int64, error) {
	seen := make(map[string]struct{}, len(candidates))
	distinct := make([]string, 0, len(candidates))
	for _, k := range candidates {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}
	if len(distinct) == 0 {
		return map[string]int64{}, nil
	}
	sort.Strings(distinct) // deterministic query shape, keeps tests stable
	return lookup(ctx, distinct)
}
