package researchbridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/petal-labs/researchbridge/backend"
)

const (
	// CodeInvalidParameter is returned when a tool argument fails a precondition.
	CodeInvalidParameter = "INVALID_PARAMETER"
	// CodeExecutionNotFound is returned when the backend reports 404 for an execution.
	CodeExecutionNotFound = "EXECUTION_NOT_FOUND"
	// CodeExecutionNotCompleted is returned when results are requested before completion.
	CodeExecutionNotCompleted = "EXECUTION_NOT_COMPLETED"
	// CodeResultsNotAvailable is returned when a completed execution has no result content.
	CodeResultsNotAvailable = "RESULTS_NOT_AVAILABLE"
	// CodeBackendError is returned for backend HTTP failures and timeouts.
	CodeBackendError = "BACKEND_ERROR"
	// CodeInternalError is the fallback for unclassified adapter failures.
	CodeInternalError = "INTERNAL_ERROR"
	// CodeUnknownTool is returned for unrecognized operation names.
	CodeUnknownTool = "UNKNOWN_TOOL"
	// CodeToolExecutionError is the dispatch-level catch-all for recovered panics.
	CodeToolExecutionError = "TOOL_EXECUTION_ERROR"
)

// AdapterError is a code-bearing failure that maps one-to-one onto an
// ErrorReport envelope. Every failure surfaced to a caller carries one.
type AdapterError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return ""
	}
	code := strings.TrimSpace(e.Code)
	msg := strings.TrimSpace(e.Message)
	switch {
	case code == "" && msg == "":
		return CodeInternalError
	case code == "":
		return msg
	case msg == "":
		return code
	default:
		return fmt.Sprintf("%s: %s", code, msg)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *AdapterError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newAdapterError(code, message string, cause error) *AdapterError {
	cleanCode := strings.TrimSpace(code)
	if cleanCode == "" {
		cleanCode = CodeInternalError
	}
	cleanMsg := strings.TrimSpace(message)
	if cleanMsg == "" && cause != nil {
		cleanMsg = cause.Error()
	}
	return &AdapterError{Code: cleanCode, Message: cleanMsg, Cause: cause}
}

func invalidParameter(format string, args ...any) *AdapterError {
	return newAdapterError(CodeInvalidParameter, fmt.Sprintf(format, args...), nil)
}

// classifyError maps any failure from the validate → proxy → normalize
// sequence onto the adapter taxonomy. Typed backend failures become
// EXECUTION_NOT_FOUND or BACKEND_ERROR; everything else is INTERNAL_ERROR.
func classifyError(err error) *AdapterError {
	if err == nil {
		return nil
	}
	var adapterErr *AdapterError
	if errors.As(err, &adapterErr) {
		return adapterErr
	}
	if backend.IsNotFound(err) {
		return newAdapterError(CodeExecutionNotFound, "execution not found", err)
	}
	if backend.IsBackendFailure(err) {
		return newAdapterError(CodeBackendError, err.Error(), err)
	}
	return newAdapterError(CodeInternalError, err.Error(), err)
}
