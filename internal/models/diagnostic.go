package models

// Diagnostic reasons recorded during the batch run.
const (
	ReasonMissingProduct = "missing_product_info"
	ReasonMissingClient  = "missing_client_roster"
	ReasonBadValue       = "bad_numeric_value"
	ReasonOutOfRange     = "trade_out_of_range"
)

// Diagnostic records an input entry that was skipped or defaulted while
// the computation continued. The pipeline collects these into the
// snapshot instead of failing on recoverable data-quality problems.
type Diagnostic struct {
	Date   Date   `json:"date,omitempty"`
	Kind   string `json:"kind"` // "fund", "client" or "trade"
	Entity string `json:"entity"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}
