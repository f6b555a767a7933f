// Package registry discovers offering directories on disk, parses their
// configs, and resolves each offering's logical name to its handler
// implementation — either a natively compiled-in Handlers or a
// dynamically loaded WASM module.
package registry

import (
	"context"
)

// Offering is a local definition of a sellable service.
type Offering struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	JobFee        float64                `json:"jobFee"`
	JobFeeType    string                 `json:"jobFeeType"`
	RequiredFunds bool                   `json:"requiredFunds"`
	Extra         map[string]interface{} `json:"-"`
}

// JobContext is the per-invocation context passed to handlers. It is
// created fresh per stage invocation and never cached.
type JobContext struct {
	JobID        int64
	OfferingName string
	DeliveryRoot string
	JobDir       string
}

// PayableDetail describes an optional return-transfer requested
// alongside a payment request or deliverable.
type PayableDetail struct {
	Amount       float64 `json:"amount"`
	TokenAddress string  `json:"tokenAddress"`
	Recipient    string  `json:"recipient,omitempty"`
}

// ExecuteJobResult is a handler's output from ExecuteJob.
type ExecuteJobResult struct {
	// Deliverable is either a string or a {type, value} structured
	// value; callers pass it straight through to the seller adapter's
	// deliverable field.
	Deliverable   interface{}
	PayableDetail *PayableDetail
}

// FundsRequest is the output of RequestAdditionalFunds.
type FundsRequest struct {
	Amount       float64
	TokenAddress string
	Recipient    string
	Content      string
	HasContent   bool
}

// Handlers is the capability set an offering may expose. ExecuteJob is
// required; the rest are optional and a BaseHandlers embed defaults them
// to "not implemented".
type Handlers interface {
	ExecuteJob(ctx context.Context, requirements map[string]interface{}, jc JobContext) (ExecuteJobResult, error)
	ValidateRequirements(ctx context.Context, requirements map[string]interface{}, jc JobContext) (valid bool, reason string, implemented bool)
	RequestPayment(ctx context.Context, requirements map[string]interface{}, jc JobContext) (content string, implemented bool)
	RequestAdditionalFunds(ctx context.Context, requirements map[string]interface{}, jc JobContext) (FundsRequest, bool)
}

// BaseHandlers gives every optional capability a "not implemented"
// default; embed it and override only ExecuteJob plus whichever
// optional methods a concrete offering needs.
type BaseHandlers struct{}

func (BaseHandlers) ValidateRequirements(ctx context.Context, requirements map[string]interface{}, jc JobContext) (bool, string, bool) {
	return false, "", false
}

func (BaseHandlers) RequestPayment(ctx context.Context, requirements map[string]interface{}, jc JobContext) (string, bool) {
	return "", false
}

func (BaseHandlers) RequestAdditionalFunds(ctx context.Context, requirements map[string]interface{}, jc JobContext) (FundsRequest, bool) {
	return FundsRequest{}, false
}
