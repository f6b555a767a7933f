package normalize

import (
	"encoding/json"
	"strconv"

	"github.com/obscura-network/acp-seller-runtime/internal/model"
)

// FindMemoByNextPhase returns the first memo whose nextPhase resolves to
// phase, if any.
func FindMemoByNextPhase(memos []model.RawMemo, phase Phase) (model.RawMemo, bool) {
	for _, m := range memos {
		if p, ok := NormalizePhase(m.NextPhase); ok && p == phase {
			return m, true
		}
	}
	return model.RawMemo{}, false
}

// HasMemoWithNextPhase reports whether any memo's nextPhase resolves to
// phase.
func HasMemoWithNextPhase(memos []model.RawMemo, phase Phase) bool {
	_, ok := FindMemoByNextPhase(memos, phase)
	return ok
}

// ParseMemoJSON best-effort decodes a memo's content as a JSON object.
// Non-JSON or non-object content returns (nil, false) rather than an
// error, matching the schema-tolerant contract of this package.
func ParseMemoJSON(content string) (map[string]interface{}, bool) {
	if content == "" {
		return nil, false
	}
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(content), &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// GetJobID accepts integers and digit-only strings.
func GetJobID(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case float64:
		return int64(t), true
	case float32:
		return int64(t), true
	case string:
		if t == "" {
			return 0, false
		}
		for _, r := range t {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
