package executor

// Result is the response envelope for one exchange.
type Result struct {
	Kind    string   `json:"kind"`
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	// For SELECT the number of returned rows, for INSERT the rows written.
	AffectedRows int64 `json:"affected_rows"`

	// Message is set for recognized commands that are not executed.
	Message string `json:"message,omitempty"`
}
