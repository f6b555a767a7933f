// Package poll implements the pull-side job reconciler: a loop that
// repeatedly lists active jobs as a fallback/catch-up path alongside
// the push socket listener, feeding the same dispatcher callback.
package poll

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/model"
	"github.com/obscura-network/acp-seller-runtime/internal/normalize"
	"github.com/obscura-network/acp-seller-runtime/internal/selleradapter"
)

const (
	defaultInterval = 15 * time.Second
	minInterval     = 2 * time.Second
	maxInterval     = 120 * time.Second
	backoffFactor   = 1.8
)

// JobHandler is the dispatcher entry point fed by both the poll
// reconciler and the socket listener.
type JobHandler func(ctx context.Context, raw model.RawJob, source string)

// Options configures the Reconciler.
type Options struct {
	Interval   time.Duration // default 15s, floor 2s
	PageSize   int           // bounded [1, 200] by the config layer
	MyWalletLc string
}

// Reconciler periodically lists active jobs and routes the ones
// addressed to our wallet to a JobHandler.
type Reconciler struct {
	client  *selleradapter.Client
	handler JobHandler
	opts    Options

	baseInterval time.Duration
	current      time.Duration
}

// New builds a Reconciler. Interval values outside [2s, +inf) are
// clamped to the 2s floor; zero selects the 15s default.
func New(client *selleradapter.Client, handler JobHandler, opts Options) *Reconciler {
	base := opts.Interval
	if base <= 0 {
		base = defaultInterval
	}
	if base < minInterval {
		base = minInterval
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}

	return &Reconciler{
		client:       client,
		handler:      handler,
		opts:         opts,
		baseInterval: base,
		current:      base,
	}
}

// Run performs an initial catch-up poll, then loops on the current
// interval until ctx is cancelled. The interval backs off on
// consecutive failures and resets to the base interval on success.
func (r *Reconciler) Run(ctx context.Context) {
	r.pollOnce(ctx)

	timer := time.NewTimer(r.current)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.pollOnce(ctx)
			timer.Reset(r.current)
		}
	}
}

func (r *Reconciler) pollOnce(ctx context.Context) {
	page := 1
	fetched := 0

	for {
		result, err := r.client.ListActiveJobs(ctx, page, r.opts.PageSize)
		if err != nil {
			log.Warn().Err(err).Msg("poll: list active jobs failed")
			r.onFailure()
			return
		}

		for _, rawMap := range result.Data {
			providerAddr, _ := rawMap["providerAddress"].(string)
			normalizedAddr, ok := normalize.NormalizeAddress(providerAddr)
			if !ok || normalizedAddr != r.opts.MyWalletLc {
				continue
			}

			var job model.RawJob
			encoded, err := json.Marshal(rawMap)
			if err != nil {
				log.Warn().Err(err).Msg("poll: failed to re-encode job payload")
				continue
			}
			if err := json.Unmarshal(encoded, &job); err != nil {
				log.Warn().Err(err).Msg("poll: failed to decode job payload")
				continue
			}

			r.handler(ctx, job, "poll")
		}

		fetched += len(result.Data)
		if len(result.Data) < r.opts.PageSize {
			break
		}
		page++
	}

	r.onSuccess()
	log.Debug().Int("fetched", fetched).Msg("poll: cycle complete")
}

func (r *Reconciler) onSuccess() {
	r.current = r.baseInterval
}

func (r *Reconciler) onFailure() {
	next := time.Duration(float64(r.current) * backoffFactor)
	if next > maxInterval {
		next = maxInterval
	}
	r.current = next
}
