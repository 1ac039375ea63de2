package core

import (
	"context"
	"sync"

	"github.com/ib-77/memosum/pkg/rop"
)

// Locomotive is one worker line: it pulls results from inputCh, runs engine on each and
// pushes the outcome to outCh until the input closes or ctx is done. Whatever is still
// queued when ctx ends is left unread; callers detect it by what never arrived.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out],
	engine func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out],
	wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		var in rop.Result[In]
		select {
		case <-ctx.Done():
			return
		case r, ok := <-inputCh:
			if !ok {
				return
			}
			in = r
		}

		pr, ok := <-engine(ctx, in)
		if !ok {
			// the engine gave up on a cancelled context
			return
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- pr:
		}
	}
}
