package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	researchbridge "github.com/petal-labs/researchbridge"
	"github.com/petal-labs/researchbridge/backend"
)

type stubBackend struct{}

func (stubBackend) CreateExecution(_ context.Context, in backend.CreateExecutionInput) (backend.ExecutionCreated, error) {
	return backend.ExecutionCreated{
		TeamID:    "team-9",
		Status:    backend.StatusPending,
		CreatedAt: "2026-01-02T10:00:00Z",
	}, nil
}

func (stubBackend) GetExecutionDetail(context.Context, string) (backend.ExecutionDetail, error) {
	return backend.ExecutionDetail{Topic: "x", Status: backend.StatusRunning}, nil
}

func (stubBackend) GetResultDocument(context.Context, string) (backend.ResultDocument, error) {
	return backend.ResultDocument{}, nil
}

func (stubBackend) ListExecutions(context.Context, backend.ListOptions) ([]backend.ExecutionSummary, error) {
	return []backend.ExecutionSummary{{TeamID: "team-9", Topic: "x", Status: backend.StatusRunning}}, nil
}

func newInMemorySession(t *testing.T) (*mcpsdk.ClientSession, func()) {
	t.Helper()

	adapter, err := researchbridge.NewAdapter(researchbridge.AdapterConfig{Backend: stubBackend{}})
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	server, err := NewServer(Config{Adapter: adapter, Name: "test", Version: "test"})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	serverCtx, serverCancel := context.WithCancel(context.Background())
	serverSession, err := server.Connect(serverCtx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "client", Version: "test"}, nil)
	clientSession, err := client.Connect(context.Background(), clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}

	cleanup := func() {
		_ = clientSession.Close()
		_ = serverSession.Close()
		serverCancel()
	}
	return clientSession, cleanup
}

func firstText(t *testing.T, res *mcpsdk.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if txt, ok := c.(*mcpsdk.TextContent); ok {
			return txt.Text
		}
	}
	t.Fatalf("result carries no text content: %+v", res)
	return ""
}

func TestServerListsAllTools(t *testing.T) {
	session, cleanup := newInMemorySession(t)
	defer cleanup()

	listed, err := session.ListTools(context.Background(), &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}

	want := map[string]bool{"spawn": false, "getStatus": false, "getResults": false, "list": false}
	for _, tool := range listed.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("tool %q not listed", name)
		}
	}
}

func TestCallSpawnRoundtrip(t *testing.T) {
	session, cleanup := newInMemorySession(t)
	defer cleanup()

	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      "spawn",
		Arguments: map[string]any{"topic": "solar panels"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal([]byte(firstText(t, res)), &envelope); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if envelope["@type"] != "CreateAction" {
		t.Fatalf("@type = %v, want CreateAction", envelope["@type"])
	}
	result, _ := envelope["result"].(map[string]any)
	if result == nil || result["identifier"] != "team-9" {
		t.Fatalf("result = %v, want identifier team-9", envelope["result"])
	}
}

func TestCallInvalidArgumentsReturnsErrorEnvelope(t *testing.T) {
	session, cleanup := newInMemorySession(t)
	defer cleanup()

	res, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      "spawn",
		Arguments: map[string]any{"topic": ""},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	var envelope map[string]any
	if err := json.Unmarshal([]byte(firstText(t, res)), &envelope); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if envelope["errorCode"] != "INVALID_PARAMETER" {
		t.Fatalf("errorCode = %v, want INVALID_PARAMETER", envelope["errorCode"])
	}
}

func TestDecodeArguments(t *testing.T) {
	args, err := decodeArguments(nil)
	if err != nil || args == nil || len(args) != 0 {
		t.Fatalf("decodeArguments(nil) = (%v, %v), want empty map", args, err)
	}

	args, err = decodeArguments(json.RawMessage(`{"topic":"x","limit":5}`))
	if err != nil {
		t.Fatalf("decodeArguments() error = %v", err)
	}
	if args["topic"] != "x" || args["limit"] != float64(5) {
		t.Fatalf("args = %v", args)
	}

	if _, err := decodeArguments(json.RawMessage(`[1,2]`)); err == nil {
		t.Fatal("expected error for non-object arguments")
	}
}
