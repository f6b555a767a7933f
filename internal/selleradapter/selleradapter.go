// Package selleradapter is a thin typed wrapper around the three
// seller-facing endpoints of the backend: accept/reject, request
// payment, deliver; plus the active-jobs listing the poll reconciler
// reads. Transport-level retry lives one layer down in
// internal/httpclient; this package only shapes requests and logs
// outcomes.
package selleradapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/obscura-network/acp-seller-runtime/internal/httpclient"
)

// PayableDetail mirrors the wire shape attached to a payment request or
// deliverable when an additional transfer is requested.
type PayableDetail struct {
	Amount       float64 `json:"amount"`
	TokenAddress string  `json:"tokenAddress,omitempty"`
	Recipient    string  `json:"recipient,omitempty"`
}

// Client wraps the seller-facing job endpoints.
type Client struct {
	http *httpclient.Client
}

// New builds a Client against baseURL, authenticating with the static
// x-api-key header.
func New(baseURL, apiKey string) *Client {
	return &Client{
		http: httpclient.New(baseURL, map[string]string{"x-api-key": apiKey}),
	}
}

type acceptBody struct {
	Accept bool   `json:"accept"`
	Reason string `json:"reason,omitempty"`
}

// AcceptOrRejectJob issues the accept/reject call for jobID. accept
// true accepts the job and accept false rejects it; reason, when
// non-empty, is sent with either as a human-readable explanation.
func (c *Client) AcceptOrRejectJob(ctx context.Context, jobID int64, accept bool, reason string) error {
	path := fmt.Sprintf("/acp/providers/jobs/%d/accept", jobID)
	resp, err := c.http.Do(ctx, http.MethodPost, path, acceptBody{Accept: accept, Reason: reason})
	log.Info().Int64("jobId", jobID).Bool("accept", accept).Int("status", resp.StatusCode).Err(err).Msg("accept/reject call")
	return err
}

type requirementBody struct {
	Content       string         `json:"content"`
	PayableDetail *PayableDetail `json:"payableDetail,omitempty"`
}

// RequestPayment issues the payment-request call for jobID. content is
// the buyer-facing message; payableDetail is nil when no additional
// transfer is requested.
func (c *Client) RequestPayment(ctx context.Context, jobID int64, content string, payableDetail *PayableDetail) error {
	path := fmt.Sprintf("/acp/providers/jobs/%d/requirement", jobID)
	resp, err := c.http.Do(ctx, http.MethodPost, path, requirementBody{Content: content, PayableDetail: payableDetail})
	log.Info().Int64("jobId", jobID).Int("status", resp.StatusCode).Err(err).Msg("request-payment call")
	return err
}

type deliverableBody struct {
	Deliverable   interface{}    `json:"deliverable"`
	PayableDetail *PayableDetail `json:"payableDetail,omitempty"`
}

// DeliverJob issues the deliver call for jobID. deliverable is either a
// plain string or a {type, value} structured value.
func (c *Client) DeliverJob(ctx context.Context, jobID int64, deliverable interface{}, payableDetail *PayableDetail) error {
	path := fmt.Sprintf("/acp/providers/jobs/%d/deliverable", jobID)
	resp, err := c.http.Do(ctx, http.MethodPost, path, deliverableBody{Deliverable: deliverable, PayableDetail: payableDetail})
	log.Info().Int64("jobId", jobID).Int("status", resp.StatusCode).Err(err).Msg("deliver call")
	return err
}

// ActiveJobsPage is the decoded GET /acp/jobs/active response. The
// backend has been observed to return either a bare array or a
// {data: [...]} envelope; ListActiveJobs normalizes both.
type ActiveJobsPage struct {
	Data []map[string]interface{}
}

// ListActiveJobs fetches one page of active jobs for polling.
func (c *Client) ListActiveJobs(ctx context.Context, page, pageSize int) (ActiveJobsPage, error) {
	path := fmt.Sprintf("/acp/jobs/active?page=%d&pageSize=%d", page, pageSize)
	resp, err := c.http.Get(ctx, path)
	if err != nil {
		return ActiveJobsPage{}, err
	}
	return decodeActiveJobsBody(resp.Body)
}
