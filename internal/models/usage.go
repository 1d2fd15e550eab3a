// Package models defines data structures and domain types.
package models

import (
	"strings"
	"time"
)

// QueryStatus is the upstream execution state of a usage query.
type QueryStatus string

// Known upstream statuses. The API reports them upper-case.
const (
	StatusPending QueryStatus = "PENDING"
	StatusRunning QueryStatus = "RUNNING"
	StatusDone    QueryStatus = "DONE"
	StatusFailed  QueryStatus = "FAILED"
)

// IsDone reports whether the status is the terminal success state.
func (s QueryStatus) IsDone() bool {
	return strings.EqualFold(string(s), string(StatusDone))
}

// QuerySpec defines one analytical usage query.
type QuerySpec struct {
	Fields  []string `json:"fields"`
	Metrics []string `json:"metrics"`
	Where   string   `json:"where,omitempty"`
}

// Clone returns a deep copy of the spec.
func (q QuerySpec) Clone() QuerySpec {
	return QuerySpec{
		Fields:  append([]string(nil), q.Fields...),
		Metrics: append([]string(nil), q.Metrics...),
		Where:   q.Where,
	}
}

// DefaultQuerySpecs returns the fixed batch submitted for every account.
func DefaultQuerySpecs() []QuerySpec {
	specs := make([]QuerySpec, 6)
	for i := range specs {
		specs[i] = QuerySpec{
			Fields:  []string{"usageCategory", "productName"},
			Metrics: []string{"tokensConsumed"},
			Where:   "contractYear=1",
		}
	}
	return specs
}

// SubmittedQuery pairs a spec with the id the upstream assigned to it.
type SubmittedQuery struct {
	Spec      QuerySpec `json:"spec"`
	AccountID string    `json:"accountId"`
	ID        string    `json:"id"`
}

// Row is one result row keyed by field or metric name.
type Row map[string]any

// QueryResult is the polled state of a submitted query. Extra upstream
// fields are kept verbatim so the result can be passed through.
type QueryResult struct {
	ID     string         `json:"id"`
	Status QueryStatus    `json:"status"`
	Result []Row          `json:"result,omitempty"`
	Extra  map[string]any `json:"-"`
}

// Number returns a numeric value from the row, if present.
func (r Row) Number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// String returns a string value from the row, or "".
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Tokens returns the numeric consumption of a row. Rows carry it as
// "value" or, for tokensConsumed queries, under the metric name.
func (r Row) Tokens() (float64, bool) {
	if v, ok := r.Number("value"); ok {
		return v, true
	}
	return r.Number("tokensConsumed")
}

// Label names the row by usage category, falling back to the product.
func (r Row) Label() string {
	if c := r.String("usageCategory"); c != "" {
		return c
	}
	return r.String("productName")
}

// TotalTokens sums the consumption of every row in the result.
func (q QueryResult) TotalTokens() float64 {
	var total float64
	for _, row := range q.Result {
		if v, ok := row.Tokens(); ok {
			total += v
		}
	}
	return total
}

// UsageBatch holds the resolved results for one account selection.
type UsageBatch struct {
	FetchedAt time.Time     `json:"fetchedAt"`
	AccountID string        `json:"accountId"`
	Results   []QueryResult `json:"results"`
	Submitted int           `json:"submitted"`
}

// Len returns the number of resolved results.
func (b *UsageBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Results)
}

// TotalTokens sums the consumption across all results.
func (b *UsageBatch) TotalTokens() float64 {
	if b == nil {
		return 0
	}
	var total float64
	for _, r := range b.Results {
		total += r.TotalTokens()
	}
	return total
}

// Truncated reports whether fewer specs were submitted than requested.
func (b *UsageBatch) Truncated(requested int) bool {
	return b != nil && b.Submitted < requested
}

// Contract is one entry of the upstream contract list.
type Contract struct {
	ContractNumber string         `json:"contractNumber"`
	Extra          map[string]any `json:"-"`
}

// ChatReply is the chatbot answer to one message.
type ChatReply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}
