package novakvwire

import "github.com/tuannm99/novakv/internal/sql/executor"

// CodeFrame marks responses to requests that could not be decoded.
const CodeFrame = "frame"

// ExecuteRequest is a single SQL command request.
type ExecuteRequest struct {
	ID  uint64 `json:"id"`
	SQL string `json:"sql"`
}

// ExecuteResponse is the response for a request ID. Exactly one of Result
// and Error is set; Code classifies the error.
type ExecuteResponse struct {
	ID     uint64           `json:"id"`
	Result *executor.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Code   string           `json:"code,omitempty"`
}
