package tiny

import (
	"context"
	"errors"
	"fmt"

	"github.com/ib-77/memosum/pkg/rop"
	"github.com/ib-77/memosum/pkg/rop/solo"
)

// ErrIterationLimit is wrapped by every LimitError.
var ErrIterationLimit = errors.New("iteration limit reached")

// LimitError reports a loop that did not settle within its bound. Last is the value the
// loop had produced when it gave up, so callers can still degrade gracefully.
type LimitError[T any] struct {
	Stage string
	Limit int
	Last  T
}

func (e *LimitError[T]) Error() string {
	return fmt.Sprintf("%s: not settled after %d iterations", e.Stage, e.Limit)
}

func (e *LimitError[T]) Unwrap() error {
	return ErrIterationLimit
}

type Chain[T any] struct {
	ctx context.Context
	res rop.Result[T]
}

func Start[T any](ctx context.Context, r rop.Result[T]) Chain[T] {
	return Chain[T]{ctx: ctx, res: r}
}

func FromValue[T any](ctx context.Context, v T) Chain[T] {
	return Start(ctx, rop.Success(v))
}

func (c Chain[T]) Result() rop.Result[T] {
	return c.res
}

// Map transforms the successful value to a new value
func (c Chain[T]) Map(onSuccess func(ctx context.Context, t T) T) Chain[T] {
	if c.res.IsFailure() {
		return c
	}
	return Chain[T]{ctx: c.ctx, res: solo.Map(c.ctx, c.res, onSuccess)}
}

// Fixpoint applies step until it hands back a value equal to its input. At most limit
// applications are made; a loop still changing after that fails with *LimitError[T].
func (c Chain[T]) Fixpoint(stage string, step func(ctx context.Context, t T) T,
	same func(a, b T) bool, limit int) Chain[T] {

	if c.res.IsFailure() {
		return c
	}
	if limit < 1 {
		limit = 1
	}

	cur := c.res.Result()
	for range limit {
		next := step(c.ctx, cur)
		if same(cur, next) {
			return Chain[T]{ctx: c.ctx, res: rop.Carry(c.res, next)}
		}
		cur = next
	}
	return Chain[T]{ctx: c.ctx, res: rop.Fail[T](&LimitError[T]{Stage: stage, Limit: limit, Last: cur})}
}

// Rewrite repeats step while it reports a rewrite. Each call restarts from the value the
// previous call produced. More than limit rewrites fails with *LimitError[T].
func (c Chain[T]) Rewrite(stage string, step func(ctx context.Context, t T) (T, bool), limit int) Chain[T] {
	if c.res.IsFailure() {
		return c
	}
	if limit < 1 {
		limit = 1
	}

	cur := c.res.Result()
	for n := 0; ; n++ {
		next, rewritten := step(c.ctx, cur)
		if !rewritten {
			return Chain[T]{ctx: c.ctx, res: rop.Carry(c.res, cur)}
		}
		cur = next
		if n+1 >= limit {
			if _, more := step(c.ctx, cur); !more {
				return Chain[T]{ctx: c.ctx, res: rop.Carry(c.res, cur)}
			}
			return Chain[T]{ctx: c.ctx, res: rop.Fail[T](&LimitError[T]{Stage: stage, Limit: limit, Last: cur})}
		}
	}
}

// Ensure triggers side effects for success/failure without changing the result
func (c Chain[T]) Ensure(onSuccess func(context.Context, T), onFailure func(context.Context, error)) Chain[T] {
	if c.res.IsFailure() {
		if onFailure != nil {
			onFailure(c.ctx, c.res.Err())
		}
		return c
	}

	if onSuccess != nil {
		onSuccess(c.ctx, c.res.Result())
	}
	return c
}

// Finally collapses the chain to a final value, delegating to solo.Finally
func Finally[T, Out any](c Chain[T],
	onSuccess func(context.Context, T) Out,
	onFailure func(context.Context, error) Out,
	onCancel func(context.Context, error) Out,
) Out {
	return solo.Finally(c.ctx, c.res, onSuccess, onFailure, onCancel)
}
