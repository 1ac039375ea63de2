package mass

import (
	"context"

	"github.com/ib-77/memosum/pkg/rop"
	"github.com/ib-77/memosum/pkg/rop/solo"
)

// lift runs one solo step in its own goroutine and forwards its outcome unless ctx ends
// first. Both channels hold one value so neither goroutine is left blocked after a cancel.
func lift[In, Out any](ctx context.Context, input rop.Result[In],
	step func() rop.Result[Out],
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {

	ch := make(chan rop.Result[Out], 1)
	out := make(chan rop.Result[Out], 1)

	go func() {
		defer close(ch)

		if ctx.Err() == nil {
			ch <- step()
		}
	}()

	go func() {
		defer close(out)

		select {
		case pr, ok := <-ch:
			if ok {
				out <- pr
			} else if onCancel != nil {
				onCancel(ctx, input)
			}
		case <-ctx.Done():
			if onCancel != nil {
				onCancel(ctx, input)
			}
		}
	}()

	return out
}

func Trying[In, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error),
	onCancel func(ctx context.Context, in rop.Result[In])) <-chan rop.Result[Out] {

	return lift(ctx, input, func() rop.Result[Out] {
		return solo.Try(ctx, input, onTryExecute)
	}, onCancel)
}

type FinallyHandlers[In, Out any] struct {
	OnSuccess func(ctx context.Context, r In) Out
	OnError   func(ctx context.Context, err error) Out
	OnCancel  func(ctx context.Context, err error) Out
}

// Finalizing reduces every result of inputCh to Out. It stops early when ctx is done;
// results still in flight at that point are dropped.
func Finalizing[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	handlers FinallyHandlers[In, Out],
	onSuccessResult func(ctx context.Context, out Out)) <-chan Out {

	out := make(chan Out)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case in, ok := <-inputCh:
				if !ok {
					return
				}

				res := solo.Finally(ctx, in, handlers.OnSuccess, handlers.OnError, handlers.OnCancel)

				select {
				case <-ctx.Done():
					return
				case out <- res:
					if onSuccessResult != nil {
						onSuccessResult(ctx, res)
					}
				}
			}
		}
	}()

	return out
}
