// Package dispatcher is the single entry point both event producers
// (the socket listener and the poll reconciler) feed: it filters,
// normalizes, deduplicates, and routes each raw job payload to the
// appropriate stage.
package dispatcher

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/ledger"
	"github.com/obscura-network/acp-seller-runtime/internal/model"
	"github.com/obscura-network/acp-seller-runtime/internal/normalize"
	"github.com/obscura-network/acp-seller-runtime/internal/stage"
)

// Dispatcher routes normalized job events to the stage executor.
type Dispatcher struct {
	Ledger   *ledger.Ledger
	Executor *stage.Executor
}

// New builds a Dispatcher over the given ledger and stage executor.
func New(l *ledger.Ledger, executor *stage.Executor) *Dispatcher {
	return &Dispatcher{Ledger: l, Executor: executor}
}

// HandleJob is the dispatcher's single entry point. It is a total
// function: malformed payloads produce a warning log line and return,
// they never panic.
func (d *Dispatcher) HandleJob(ctx context.Context, job model.RawJob, source, myWalletLc string) {
	jobID, ok := normalize.GetJobID(job.ID)
	if !ok {
		log.Warn().Str("source", source).Msg("dispatcher: dropping event with no resolvable job id")
		return
	}

	if job.ProviderAddress != "" {
		providerAddr, addrOK := normalize.NormalizeAddress(job.ProviderAddress)
		if addrOK && providerAddr != myWalletLc {
			return
		}
	}

	phase, ok := normalize.NormalizePhase(job.Phase)
	if !ok {
		log.Warn().Int64("jobId", jobID).Str("source", source).Msg("dispatcher: dropping event with unrecognized phase")
		return
	}

	if !d.Ledger.TryEnter(jobID) {
		return
	}
	defer d.Ledger.Leave(jobID)

	log.Info().Int64("jobId", jobID).Str("source", source).Str("phase", normalize.PhaseLabel(job.Phase)).Msg("dispatcher: job event")

	switch phase {
	case normalize.PhaseRequest, normalize.PhaseNegotiation:
		d.Executor.AcceptStage(ctx, job, jobID)
	case normalize.PhaseTransaction, normalize.PhaseEvaluation:
		d.Executor.DeliverStage(ctx, job, jobID)
	default:
		// COMPLETED/REJECTED/EXPIRED: terminal, no action.
	}
}

// HandleJobAdapter binds myWalletLc into a closure matching the
// JobHandler signature both the socket listener and poll reconciler
// invoke, so neither producer needs to know the wallet address itself.
func (d *Dispatcher) HandleJobAdapter(myWalletLc string) func(ctx context.Context, job model.RawJob, source string) {
	return func(ctx context.Context, job model.RawJob, source string) {
		d.HandleJob(ctx, job, source, myWalletLc)
	}
}
