package client

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// cacheThenNetwork emits Loading, then the locally cached value when there is one,
// then the network value once it has been written to the local store.
// A network failure becomes an Error only when nothing was cached.
// The channel is closed when done or when ctx is cancelled.
func cacheThenNetwork[T any](
	ctx context.Context,
	logger log.FieldLogger,
	load func(context.Context) (T, bool, error),
	fetch func(context.Context) (T, error),
	save func(context.Context, T) error,
) <-chan Result[T] {
	out := make(chan Result[T], 1)

	type fetched struct {
		data T
		err  error
	}
	network := make(chan fetched, 1)
	go func() {
		data, err := fetch(ctx)
		network <- fetched{data: data, err: err}
	}()

	go func() {
		defer close(out)

		send := func(r Result[T]) bool {
			select {
			case out <- r:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(Loading[T]()) {
			return
		}

		local, found, err := load(ctx)
		if err != nil {
			logger.WithError(err).Warn("Local cache read failed")
			found = false
		}
		if found && !send(cached(local)) {
			return
		}

		var res fetched
		select {
		case res = <-network:
		case <-ctx.Done():
			return
		}

		if res.err != nil {
			if found {
				logger.WithError(res.err).Info("Refresh failed, keeping cached data")
				return
			}
			send(Error[T](res.err))
			return
		}

		if err := save(ctx, res.data); err != nil {
			logger.WithError(err).Warn("Local cache write failed")
		}
		send(Success(res.data))
	}()

	return out
}
