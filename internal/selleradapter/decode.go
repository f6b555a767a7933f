package selleradapter

import "encoding/json"

// decodeActiveJobsBody accepts either a bare JSON array of jobs or an
// envelope {"data": [...]}, matching the two shapes the backend has
// been observed to return for the same endpoint.
func decodeActiveJobsBody(body []byte) (ActiveJobsPage, error) {
	var arr []map[string]interface{}
	if err := json.Unmarshal(body, &arr); err == nil {
		return ActiveJobsPage{Data: arr}, nil
	}

	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ActiveJobsPage{}, err
	}
	return ActiveJobsPage{Data: envelope.Data}, nil
}
