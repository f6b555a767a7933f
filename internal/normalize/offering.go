package normalize

import (
	"strings"

	"github.com/obscura-network/acp-seller-runtime/internal/model"
)

var offeringNameKeys = []string{"jobOfferingName", "offeringName", "offering", "name"}

var requirementKeys = []string{"requirement", "requirements", "serviceRequirements"}

// reservedRequirementKeys are stripped from a negotiation memo's JSON
// before it is used as a last-resort requirements map, since these keys
// carry protocol metadata rather than buyer-stated requirements.
var reservedRequirementKeys = map[string]struct{}{
	"name": {}, "offeringName": {}, "offering": {},
	"requirement": {}, "requirements": {}, "serviceRequirements": {},
	"price": {}, "priceValue": {}, "priceType": {},
	"jobFee": {}, "memoToSign": {},
}

func firstNonEmptyString(m map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			return s, true
		}
	}
	return "", false
}

func negotiationMemoJSON(job model.RawJob) (map[string]interface{}, bool) {
	memo, ok := FindMemoByNextPhase(job.Memos, PhaseNegotiation)
	if !ok {
		return nil, false
	}
	return ParseMemoJSON(memo.Content)
}

// ResolveOfferingName implements the priority order documented in the
// normalizer's design: job.context fields, then job.name, then the
// negotiation memo's JSON content, using the same key priority each
// time.
func ResolveOfferingName(job model.RawJob) (string, bool) {
	if job.Context != nil {
		if name, ok := firstNonEmptyString(job.Context, offeringNameKeys); ok {
			return name, true
		}
	}
	if name := strings.TrimSpace(job.Name); name != "" {
		return name, true
	}
	if memoJSON, ok := negotiationMemoJSON(job); ok {
		if name, ok := firstNonEmptyString(memoJSON, offeringNameKeys); ok {
			return name, true
		}
	}
	return "", false
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// ResolveServiceRequirements implements the priority order documented in
// the normalizer's design, returning an empty map when nothing resolves.
// It is a pure function of (job.Context, job.Memos).
func ResolveServiceRequirements(job model.RawJob) map[string]interface{} {
	if job.Context != nil {
		for _, k := range requirementKeys {
			if v, ok := job.Context[k]; ok {
				if m, ok := asMap(v); ok {
					return m
				}
			}
		}
	}

	memoJSON, ok := negotiationMemoJSON(job)
	if !ok {
		return map[string]interface{}{}
	}

	for _, k := range requirementKeys {
		if v, ok := memoJSON[k]; ok {
			if m, ok := asMap(v); ok {
				return m
			}
		}
	}

	result := make(map[string]interface{}, len(memoJSON))
	for k, v := range memoJSON {
		if _, reserved := reservedRequirementKeys[k]; reserved {
			continue
		}
		result[k] = v
	}
	return result
}
