package core

import (
	"context"

	"github.com/ib-77/memosum/pkg/rop"
	"github.com/ib-77/memosum/pkg/rop/solo"
)

// ToChanManyResults feeds values as successful results into a fresh channel and closes it
// once every value was taken or ctx is done.
func ToChanManyResults[T any](ctx context.Context, values []T) <-chan rop.Result[T] {
	in := make(chan rop.Result[T])

	go func() {
		defer close(in)

		for _, v := range values {
			if ctx.Err() != nil {
				return
			}
			select {
			case in <- solo.Succeed(v):
			case <-ctx.Done():
				return
			}
		}
	}()

	return in
}

// FromChanMany drains out until it is closed or ctx is done.
func FromChanMany[T any](ctx context.Context, out <-chan T) []T {
	res := make([]T, 0)
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return res
			}
			res = append(res, v)
		case <-ctx.Done():
			return res
		}
	}
}
