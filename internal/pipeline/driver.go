package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"go.uber.org/zap"
)

// Driver composes Stages in order and is the sole owner of process-wide
// dependencies (logger, config, reference store handle, cache, trie
// finders): each Stage is constructed by the caller with exactly what it
// needs, never through a package-level container (§9, "Global DI
// container").
type Driver struct {
	logger *zap.Logger
	stages []Stage
}

// NewDriver builds a Driver over stages, applied in the given order.
func NewDriver(logger *zap.Logger, stages ...Stage) *Driver {
	return &Driver{logger: logger, stages: stages}
}

// Run threads in through every stage in turn, one goroutine per stage
// boundary connected by buffered channels (§5), and returns the final
// output channel plus an error channel that receives at most one fatal
// error (§7d). A fatal error cancels the whole run; Process calls "bubble
// and terminate the stream" per §7's propagation policy, while ordinary
// per-record misses never reach this channel.
func (d *Driver) Run(ctx context.Context, in <-chan *addr.Query) (<-chan *addr.Query, <-chan error) {
	ctx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)

	current := in
	for _, stage := range d.stages {
		current = d.runStage(ctx, cancel, errCh, stage, current)
	}
	return current, errCh
}

func (d *Driver) runStage(ctx context.Context, cancel context.CancelFunc, errCh chan<- error, stage Stage, in <-chan *addr.Query) <-chan *addr.Query {
	out := make(chan *addr.Query, 64)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case q, ok := <-in:
				if !ok {
					return
				}
				results, err := stage.Process(ctx, q)
				if err != nil {
					d.logger.Error("stage failed, terminating stream",
						zap.String("stage", stage.Name()), zap.Error(err))
					select {
					case errCh <- err:
					default:
					}
					cancel()
					return
				}
				for _, r := range results {
					select {
					case out <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}
