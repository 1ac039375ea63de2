package memocalc

import (
	"context"

	"github.com/ib-77/memosum/pkg/rop/core"
	"github.com/ib-77/memosum/pkg/rop/lite"
	"github.com/ib-77/memosum/pkg/rop/mass"
)

// BatchResult is the outcome for texts[Index]. Err is set only when the batch was cancelled
// before that text was extracted.
type BatchResult struct {
	Index  int
	Result Result
	Err    error
}

type indexed struct {
	index int
	text  string
}

// ExtractAll extracts every text on the given number of worker lines (core.WithWorkerOptions
// in ctx takes precedence). Results come back in input order.
func (e *Engine) ExtractAll(ctx context.Context, texts []string, lines int) []BatchResult {
	items := make([]indexed, len(texts))
	for i, t := range texts {
		items[i] = indexed{index: i, text: t}
	}

	lines = core.GetWorkerMaxCount(ctx, lines)

	done := core.FromChanMany(ctx,
		lite.Finally(ctx,
			lite.Turnout(ctx,
				core.ToChanManyResults(ctx, items),
				lite.Try(func(ctx context.Context, in indexed) (BatchResult, error) {
					// a text picked up after cancellation is not extracted
					if err := ctx.Err(); err != nil {
						return BatchResult{}, err
					}
					return BatchResult{Index: in.index, Result: e.Extract(in.text)}, nil
				}),
				lines),
			mass.FinallyHandlers[BatchResult, BatchResult]{
				OnSuccess: func(_ context.Context, r BatchResult) BatchResult { return r },
				OnError:   func(_ context.Context, err error) BatchResult { return BatchResult{Index: -1, Err: err} },
				OnCancel:  func(_ context.Context, err error) BatchResult { return BatchResult{Index: -1, Err: err} },
			},
		),
	)

	out := make([]BatchResult, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range done {
		if r.Index < 0 || r.Index >= len(texts) {
			continue
		}
		out[r.Index] = r
		seen[r.Index] = true
	}
	for i := range out {
		if !seen[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = BatchResult{Index: i, Result: Empty(), Err: err}
		}
	}
	return out
}

// ExtractAll runs texts through the default engine.
func ExtractAll(ctx context.Context, texts []string, lines int) []BatchResult {
	return defaultEngine.ExtractAll(ctx, texts, lines)
}
