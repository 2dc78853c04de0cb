// Package tools implements the eight core operations of the tool
// surface (manageContainer, queryContainer, manageDependency,
// queryDependencies, getNextItem, getBlocked, progress, flowPath) plus
// the supplemented queryHistory read, each wrapping the engine
// components (C1-C7) behind a single response envelope. internal/
// mcpserver calls it over the MCP stdio transport; internal/cli calls
// it directly for the operator CLI.
package tools

import "time"

// ServerVersion is reported in every envelope's metadata block.
const ServerVersion = "0.1.0"

// Envelope is the response shape every tool operation returns, per the
// external interface contract: a success flag, a human-readable
// message, the operation's data payload on success, a structured error
// on failure, and a metadata block every response carries regardless
// of outcome.
type Envelope struct {
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

// ErrorInfo carries the stable error code; the human-readable message
// is the envelope's Message, not a field of ErrorInfo. Details
// optionally adds structured context (a cycle path, a suggestions list).
type ErrorInfo struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Metadata is attached to every envelope, success or failure.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

func newMetadata() Metadata {
	return Metadata{Timestamp: time.Now().UTC().Format(time.RFC3339), Version: ServerVersion}
}

// Ok builds a success envelope.
func Ok(message string, data any) *Envelope {
	return &Envelope{Success: true, Message: message, Data: data, Metadata: newMetadata()}
}

// Fail builds a failure envelope from err, mapping apperr.Error to its
// declared code and falling back to INTERNAL_ERROR for anything else —
// an unexpected error should never leak an unstable message as the
// code.
func Fail(err error) *Envelope {
	code, details, message := classify(err)
	return &Envelope{
		Success:  false,
		Message:  message,
		Error:    &ErrorInfo{Code: code, Details: details},
		Metadata: newMetadata(),
	}
}
