// Package normalize canonicalizes protocol values that arrive as either
// numbers or strings: job phases, wallet addresses, and the offering
// name / service requirements buried in a job's context or memos.
//
// Every function here is total: malformed input yields an "absent"
// zero value, never an error, matching the schema-tolerant boundary the
// rest of the core relies on.
package normalize

import (
	"strconv"
	"strings"
)

// Phase is the seller-side job lifecycle state.
type Phase int

const (
	// PhaseUnknown marks a value that could not be resolved to a known
	// phase. Dispatchers must drop events carrying it.
	PhaseUnknown Phase = -1

	PhaseRequest      Phase = 0
	PhaseNegotiation  Phase = 1
	PhaseTransaction  Phase = 2
	PhaseEvaluation   Phase = 3
	PhaseCompleted    Phase = 4
	PhaseRejected     Phase = 5
	PhaseExpired      Phase = 6
)

var phaseNames = [...]string{
	PhaseRequest:     "REQUEST",
	PhaseNegotiation: "NEGOTIATION",
	PhaseTransaction: "TRANSACTION",
	PhaseEvaluation:  "EVALUATION",
	PhaseCompleted:   "COMPLETED",
	PhaseRejected:    "REJECTED",
	PhaseExpired:     "EXPIRED",
}

var phaseByName = func() map[string]Phase {
	m := make(map[string]Phase, len(phaseNames))
	for p, name := range phaseNames {
		m[name] = Phase(p)
	}
	return m
}()

// PhaseLabel returns the canonical symbolic name for v, or "unknown" if
// it cannot be resolved.
func PhaseLabel(v interface{}) string {
	p, ok := NormalizePhase(v)
	if !ok {
		return "unknown"
	}
	return phaseNames[p]
}

// NormalizePhase accepts an integer 0..6, a numeric string ("0".."6"),
// or a symbolic string ("REQUEST", ..., case-insensitive) and returns
// the canonical Phase. Any other input returns (PhaseUnknown, false).
func NormalizePhase(v interface{}) (Phase, bool) {
	switch t := v.(type) {
	case Phase:
		if t >= PhaseRequest && t <= PhaseExpired {
			return t, true
		}
		return PhaseUnknown, false
	case int:
		return phaseFromInt(t)
	case int32:
		return phaseFromInt(int(t))
	case int64:
		return phaseFromInt(int(t))
	case float64:
		return phaseFromInt(int(t))
	case float32:
		return phaseFromInt(int(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return PhaseUnknown, false
		}
		if n, err := strconv.Atoi(s); err == nil {
			return phaseFromInt(n)
		}
		if p, ok := phaseByName[strings.ToUpper(s)]; ok {
			return p, true
		}
		return PhaseUnknown, false
	default:
		return PhaseUnknown, false
	}
}

func phaseFromInt(n int) (Phase, bool) {
	if n < 0 || n > int(PhaseExpired) {
		return PhaseUnknown, false
	}
	return Phase(n), true
}

// IsTerminal reports whether p is a terminal phase.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted || p == PhaseRejected || p == PhaseExpired
}
