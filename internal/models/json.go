package models

import (
	"encoding/json"
	"fmt"
	"maps"
)

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (q *QueryResult) UnmarshalJSON(data []byte) error {
	type known QueryResult
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	extra, err := extraFields(data, "id", "status", "result")
	if err != nil {
		return err
	}

	*q = QueryResult(k)
	q.Extra = extra
	return nil
}

// MarshalJSON writes Extra back alongside the known fields.
func (q QueryResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(q.Extra)+3)
	maps.Copy(out, q.Extra)
	out["id"] = q.ID
	out["status"] = q.Status
	if q.Result != nil {
		out["result"] = q.Result
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the contract number and keeps the rest in Extra.
func (c *Contract) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw["contractNumber"].(type) {
	case string:
		c.ContractNumber = v
	case float64:
		c.ContractNumber = fmt.Sprintf("%.0f", v)
	case nil:
		c.ContractNumber = ""
	default:
		return fmt.Errorf("unexpected contractNumber type %T", v)
	}

	delete(raw, "contractNumber")
	if len(raw) > 0 {
		c.Extra = raw
	} else {
		c.Extra = nil
	}
	return nil
}

// MarshalJSON writes Extra back alongside the contract number.
func (c Contract) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	maps.Copy(out, c.Extra)
	out["contractNumber"] = c.ContractNumber
	return json.Marshal(out)
}

func extraFields(data []byte, known ...string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(raw, k)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}
