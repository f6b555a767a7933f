// Package stage implements the accept and deliver stages of a job's
// lifecycle: idempotency short-circuits, offering resolution, handler
// invocation, and the seller API calls each stage issues under retry.
package stage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/delivery"
	"github.com/obscura-network/acp-seller-runtime/internal/ledger"
	"github.com/obscura-network/acp-seller-runtime/internal/model"
	"github.com/obscura-network/acp-seller-runtime/internal/normalize"
	"github.com/obscura-network/acp-seller-runtime/internal/registry"
	"github.com/obscura-network/acp-seller-runtime/internal/retry"
	"github.com/obscura-network/acp-seller-runtime/internal/selleradapter"
)

// Executor wires the offering registry, delivery writer, seller
// adapter, retry policy, and ledger together into the two stages the
// dispatcher routes to.
type Executor struct {
	Registry     *registry.Registry
	Seller       *selleradapter.Client
	Ledger       *ledger.Ledger
	DeliveryRoot string
	RetryOpts    retry.Options
}

// New builds an Executor. Zero-value RetryOpts selects retry.DefaultOptions.
func New(reg *registry.Registry, seller *selleradapter.Client, l *ledger.Ledger, deliveryRoot string) *Executor {
	return &Executor{
		Registry:     reg,
		Seller:       seller,
		Ledger:       l,
		DeliveryRoot: deliveryRoot,
		RetryOpts:    retry.DefaultOptions(),
	}
}

// resolved bundles the offering lookup and requirement resolution the
// two stages both perform at entry.
type resolved struct {
	offeringName string
	requirements map[string]interface{}
	config       registry.Offering
	handlers     registry.Handlers
}

func (e *Executor) resolveOffering(ctx context.Context, job model.RawJob) (resolved, error) {
	offeringName, ok := normalize.ResolveOfferingName(job)
	if !ok || offeringName == "" {
		return resolved{}, fmt.Errorf("invalid offering name (could not resolve)")
	}

	requirements := normalize.ResolveServiceRequirements(job)

	cfg, handlers, err := e.Registry.LoadOffering(ctx, offeringName)
	if err != nil {
		return resolved{}, fmt.Errorf("offering not configured locally: %s", offeringName)
	}

	return resolved{offeringName: offeringName, requirements: requirements, config: cfg, handlers: handlers}, nil
}

func (e *Executor) buildJobContext(jobID int64, offeringName string) (registry.JobContext, string, error) {
	deliveryRoot, jobDir, err := delivery.EnsureJobDir(e.DeliveryRoot, jobID)
	if err != nil {
		return registry.JobContext{}, "", err
	}
	return registry.JobContext{
		JobID:        jobID,
		OfferingName: offeringName,
		DeliveryRoot: deliveryRoot,
		JobDir:       jobDir,
	}, jobDir, nil
}

// AcceptStage drives a job through accept/reject and payment request.
func (e *Executor) AcceptStage(ctx context.Context, job model.RawJob, jobID int64) {
	if normalize.HasMemoWithNextPhase(job.Memos, normalize.PhaseTransaction) {
		e.Ledger.MarkAccepted(jobID)
		return
	}
	if e.Ledger.IsAccepted(jobID) {
		return
	}

	res, err := e.resolveOffering(ctx, job)
	if err != nil {
		e.rejectAndMarkAccepted(ctx, jobID, err.Error())
		return
	}

	jc, _, err := e.buildJobContext(jobID, res.offeringName)
	if err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: failed to build job context")
		return
	}

	if valid, reason, implemented := res.handlers.ValidateRequirements(ctx, res.requirements, jc); implemented && !valid {
		if reason == "" {
			reason = "Validation failed"
		}
		e.rejectAndMarkAccepted(ctx, jobID, reason)
		return
	}

	if _, err := retry.WithRetry(ctx, e.RetryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.Seller.AcceptOrRejectJob(ctx, jobID, true, "Job accepted")
	}); err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: accept call failed after retries")
		return
	}

	content, payableDetail := e.resolvePaymentRequest(ctx, res, jc)

	if _, err := retry.WithRetry(ctx, e.RetryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.Seller.RequestPayment(ctx, jobID, content, payableDetail)
	}); err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: request-payment call failed after retries")
	}

	e.Ledger.MarkAccepted(jobID)
}

func (e *Executor) resolvePaymentRequest(ctx context.Context, res resolved, jc registry.JobContext) (string, *selleradapter.PayableDetail) {
	var payableDetail *selleradapter.PayableDetail
	var fundsContent string
	var hasFundsContent bool

	if res.config.RequiredFunds {
		if funds, implemented := res.handlers.RequestAdditionalFunds(ctx, res.requirements, jc); implemented {
			payableDetail = &selleradapter.PayableDetail{
				Amount:       funds.Amount,
				TokenAddress: funds.TokenAddress,
				Recipient:    funds.Recipient,
			}
			fundsContent = funds.Content
			hasFundsContent = funds.HasContent
		}
	}

	if content, implemented := res.handlers.RequestPayment(ctx, res.requirements, jc); implemented {
		return content, payableDetail
	}
	if hasFundsContent {
		return fundsContent, payableDetail
	}
	return "Request accepted", payableDetail
}

func (e *Executor) rejectAndMarkAccepted(ctx context.Context, jobID int64, reason string) {
	if _, err := retry.WithRetry(ctx, e.RetryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.Seller.AcceptOrRejectJob(ctx, jobID, false, reason)
	}); err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: reject call failed after retries")
	}
	e.Ledger.MarkAccepted(jobID)
}

// DeliverStage drives a job through handler execution and delivery.
func (e *Executor) DeliverStage(ctx context.Context, job model.RawJob, jobID int64) {
	if job.HasDeliverable() {
		e.Ledger.MarkDelivered(jobID)
		return
	}
	if e.Ledger.IsDelivered(jobID) {
		return
	}

	res, err := e.resolveOffering(ctx, job)
	if err != nil {
		log.Warn().Int64("jobId", jobID).Err(err).Msg("stage: cannot resolve offering for delivery")
		return
	}

	jc, _, err := e.buildJobContext(jobID, res.offeringName)
	if err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: failed to build job context")
		return
	}

	result, err := res.handlers.ExecuteJob(ctx, res.requirements, jc)
	if err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: executeJob failed, not retrying")
		return
	}

	var payableDetail *selleradapter.PayableDetail
	if result.PayableDetail != nil {
		payableDetail = &selleradapter.PayableDetail{
			Amount:       result.PayableDetail.Amount,
			TokenAddress: result.PayableDetail.TokenAddress,
			Recipient:    result.PayableDetail.Recipient,
		}
	}

	if _, err := retry.WithRetry(ctx, e.RetryOpts, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, e.Seller.DeliverJob(ctx, jobID, result.Deliverable, payableDetail)
	}); err != nil {
		log.Error().Int64("jobId", jobID).Err(err).Msg("stage: deliver call failed after retries")
		return
	}

	e.Ledger.MarkDelivered(jobID)
}
