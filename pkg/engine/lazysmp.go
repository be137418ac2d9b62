package engine

import (
	"golang.org/x/sync/errgroup"

	"github.com/rs/zerolog/log"
)

// lazySmp fans one goroutine per worker over the same root position. The
// only shared state is the transposition table, the stop flag and the
// published counters; everything else is worker-local, so helpers need no
// coordination beyond the final join.
func lazySmp(e *Engine) {
	var g errgroup.Group
	for i := 1; i < len(e.threads); i++ {
		var w = &e.threads[i]
		g.Go(func() error {
			w.iterativeDeepening()
			return nil
		})
	}

	e.threads[0].iterativeDeepening()
	// the main worker decided to halt; everyone else follows
	e.stop.Store(true)

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("helper worker failed")
	}
}
