// Package model holds the wire-level shapes of jobs and memos as they
// arrive from the backend. Fields that the upstream protocol has been
// observed to send as either numbers or strings are kept as interface{}
// here and resolved once, at the boundary, by package normalize.
package model

// RawJob is a job payload as delivered by the socket or poll reconciler.
// It is a borrowed, read-only view: the core holds no canonical copy.
type RawJob struct {
	ID               interface{}            `json:"id"`
	Phase            interface{}            `json:"phase"`
	ClientAddress    string                 `json:"clientAddress"`
	ProviderAddress  string                 `json:"providerAddress"`
	EvaluatorAddress string                 `json:"evaluatorAddress"`
	Price            float64                `json:"price"`
	Memos            []RawMemo              `json:"memos"`
	Context          map[string]interface{} `json:"context"`
	Deliverable      interface{}            `json:"deliverable"`
	MemoToSign       interface{}            `json:"memoToSign"`
	Name             string                 `json:"name"`
}

// RawMemo is a chat-like envelope attached to a job.
type RawMemo struct {
	ID        interface{} `json:"id"`
	NextPhase interface{} `json:"nextPhase"`
	Content   string      `json:"content"`
	MemoType  string      `json:"memoType,omitempty"`
	Status    string      `json:"status,omitempty"`
	CreatedAt string      `json:"createdAt,omitempty"`
}

// HasDeliverable reports whether the job's deliverable field is already
// populated. A populated deliverable means the job is already
// delivered, regardless of what the ledger has recorded.
func (j RawJob) HasDeliverable() bool {
	switch v := j.Deliverable.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}
