// Package pagination turns page-based list endpoints into lazy, gap-free,
// deduplicated record sequences.
package pagination

import (
	"context"
	"iter"

	"polyfeed/pkg/hashset"
)

// FetchFunc returns one batch of raw records for the given limit/offset.
type FetchFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// PageFetchFunc returns one batch of raw records for the given page number,
// along with whether the server reports more pages.
type PageFetchFunc[T any] func(ctx context.Context, page int) ([]T, bool, error)

// Config controls one pagination call.
type Config[T any] struct {
	// BatchSize is the per-page limit requested from the endpoint.
	// Each endpoint picks its own default when <= 0.
	BatchSize int
	// Limit caps the total number of emitted records. <= 0 means unbounded.
	Limit int
	// Key, when non-nil, deduplicates records across the whole call: a record
	// whose key was already emitted is skipped without counting toward Limit.
	Key func(T) string
}

const DefaultBatchSize = 500

// Offset iterates an offset/limit endpoint where an empty batch is the
// exhaustion signal. The offset always advances by the raw batch length, so
// dedup skips never cause a record to be re-requested. A fetch error is
// yielded once with a zero record and ends the sequence; records already
// yielded stay valid.
func Offset[T any](ctx context.Context, fetch FetchFunc[T], cfg Config[T]) iter.Seq2[T, error] {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return func(yield func(T, error) bool) {
		var zero T
		var seen hashset.Set[string]
		if cfg.Key != nil {
			seen = hashset.NewSet[string]()
		}

		offset := 0
		emitted := 0
		for cfg.Limit <= 0 || emitted < cfg.Limit {
			batch, err := fetch(ctx, batchSize, offset)
			if err != nil {
				yield(zero, err)
				return
			}
			if len(batch) == 0 {
				return
			}

			for _, record := range batch {
				if cfg.Limit > 0 && emitted >= cfg.Limit {
					return
				}
				if seen != nil {
					key := cfg.Key(record)
					if seen.Has(key) {
						continue
					}
					seen.Set(key)
				}
				if !yield(record, nil) {
					return
				}
				emitted++
			}

			offset += len(batch)
		}
	}
}

// Pages iterates a page-numbered endpoint that reports exhaustion through an
// explicit hasMore flag, as the public-search endpoint does. A short page is
// not a termination signal; only hasMore=false or an empty batch is.
func Pages[T any](ctx context.Context, fetch PageFetchFunc[T], limit int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		page := 0
		emitted := 0
		for limit <= 0 || emitted < limit {
			batch, hasMore, err := fetch(ctx, page)
			if err != nil {
				yield(zero, err)
				return
			}
			if len(batch) == 0 {
				return
			}

			for _, record := range batch {
				if limit > 0 && emitted >= limit {
					return
				}
				if !yield(record, nil) {
					return
				}
				emitted++
			}

			if !hasMore {
				return
			}
			page++
		}
	}
}
