package researchbridge

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/petal-labs/researchbridge/backend"
)

func TestAdapterErrorMessage(t *testing.T) {
	err := newAdapterError(CodeBackendError, "boom", nil)
	if got := err.Error(); got != "BACKEND_ERROR: boom" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestAdapterErrorMessageFromCause(t *testing.T) {
	cause := errors.New("underlying")
	err := newAdapterError(CodeInternalError, "", cause)
	if err.Message != "underlying" {
		t.Fatalf("Message = %q, want underlying", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is does not reach the cause")
	}
}

func TestClassifyErrorPassesAdapterErrorThrough(t *testing.T) {
	original := invalidParameter("topic must be a non-empty string")
	classified := classifyError(fmt.Errorf("dispatch spawn: %w", original))
	if classified != original {
		t.Fatalf("classified = %v, want the original *AdapterError", classified)
	}
}

func TestClassifyErrorNotFound(t *testing.T) {
	err := &backend.StatusError{Op: "GET /api/v1/agent-teams/x", StatusCode: http.StatusNotFound}
	classified := classifyError(err)
	if classified.Code != CodeExecutionNotFound {
		t.Fatalf("Code = %q, want %q", classified.Code, CodeExecutionNotFound)
	}
}

func TestClassifyErrorBackendFailure(t *testing.T) {
	tests := []error{
		&backend.StatusError{Op: "GET /api/v1/agent-teams", StatusCode: http.StatusBadGateway},
		&backend.RequestError{Op: "GET /api/v1/agent-teams", Err: errors.New("connection refused")},
	}
	for _, err := range tests {
		classified := classifyError(err)
		if classified.Code != CodeBackendError {
			t.Fatalf("classifyError(%v) code = %q, want %q", err, classified.Code, CodeBackendError)
		}
	}
}

func TestClassifyErrorFallsBackToInternal(t *testing.T) {
	classified := classifyError(errors.New("surprise"))
	if classified.Code != CodeInternalError {
		t.Fatalf("Code = %q, want %q", classified.Code, CodeInternalError)
	}
	if classified.Message != "surprise" {
		t.Fatalf("Message = %q, want surprise", classified.Message)
	}
}

func TestClassifyErrorNil(t *testing.T) {
	if got := classifyError(nil); got != nil {
		t.Fatalf("classifyError(nil) = %v, want nil", got)
	}
}

func TestParseOp(t *testing.T) {
	for _, name := range []string{"spawn", "getStatus", "getResults", "list"} {
		if _, ok := ParseOp(name); !ok {
			t.Fatalf("ParseOp(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"", "Spawn", "getstatus", "delete"} {
		if _, ok := ParseOp(name); ok {
			t.Fatalf("ParseOp(%q) = true, want false", name)
		}
	}
}
