package researchbridge

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/petal-labs/researchbridge/backend"
)

func TestNewCreateAction(t *testing.T) {
	got := newCreateAction("solar panels", backend.ExecutionCreated{
		TeamID:    "team-1",
		Status:    backend.StatusPending,
		CreatedAt: "2026-01-02T10:00:00Z",
	})

	if got.Context != "https://schema.org" || got.Type != "CreateAction" {
		t.Fatalf("envelope tags = %q/%q", got.Context, got.Type)
	}
	if got.ActionStatus != "PotentialActionStatus" {
		t.Fatalf("ActionStatus = %q, want PotentialActionStatus", got.ActionStatus)
	}
	if got.Result.Identifier != "team-1" {
		t.Fatalf("Result.Identifier = %q, want team-1", got.Result.Identifier)
	}
	if got.Result.Name != "solar panels" {
		t.Fatalf("Result.Name = %q, want solar panels", got.Result.Name)
	}
	if got.Description == "" {
		t.Fatal("Description is empty")
	}
}

func TestNewStatusReportRunningOmitsDerivedFields(t *testing.T) {
	got := newStatusReport("team-1", backend.ExecutionDetail{
		Topic:     "solar panels",
		Status:    backend.StatusRunning,
		CreatedAt: "2026-01-02T10:00:00Z",
		UpdatedAt: "2026-01-02T10:05:00Z",
		Sachstand: json.RawMessage(`{"entities":[{},{}]}`),
	})

	if got.CreativeWorkStatus != backend.StatusRunning {
		t.Fatalf("CreativeWorkStatus = %q, want running", got.CreativeWorkStatus)
	}
	if got.NumberOfEntities != nil {
		t.Fatalf("NumberOfEntities = %v, want nil while running", *got.NumberOfEntities)
	}
	if got.Duration != "" {
		t.Fatalf("Duration = %q, want empty while running", got.Duration)
	}
}

func TestNewStatusReportCompleted(t *testing.T) {
	got := newStatusReport("team-1", backend.ExecutionDetail{
		Topic:     "solar panels",
		Status:    backend.StatusCompleted,
		CreatedAt: "2026-01-02T10:00:00Z",
		UpdatedAt: "2026-01-02T10:05:23Z",
		Sachstand: json.RawMessage(`{"entities":[{},{},{}]}`),
	})

	if got.NumberOfEntities == nil || *got.NumberOfEntities != 3 {
		t.Fatalf("NumberOfEntities = %v, want 3", got.NumberOfEntities)
	}
	if got.Duration != "PT5M23S" {
		t.Fatalf("Duration = %q, want PT5M23S", got.Duration)
	}
	if got.DateModified != "2026-01-02T10:05:23Z" {
		t.Fatalf("DateModified = %q", got.DateModified)
	}
}

func TestNewStatusReportCompletedWithoutEntities(t *testing.T) {
	got := newStatusReport("team-1", backend.ExecutionDetail{
		Topic:     "solar panels",
		Status:    backend.StatusCompleted,
		CreatedAt: "2026-01-02T10:00:00Z",
		UpdatedAt: "2026-01-02T10:00:30Z",
	})

	if got.NumberOfEntities != nil {
		t.Fatalf("NumberOfEntities = %v, want nil without entity list", *got.NumberOfEntities)
	}
	if got.Duration != "PT30S" {
		t.Fatalf("Duration = %q, want PT30S", got.Duration)
	}
}

func TestNewStatusReportUnparseableTimestampsOmitDuration(t *testing.T) {
	got := newStatusReport("team-1", backend.ExecutionDetail{
		Status:    backend.StatusCompleted,
		CreatedAt: "yesterday",
		UpdatedAt: "2026-01-02T10:00:30Z",
	})
	if got.Duration != "" {
		t.Fatalf("Duration = %q, want empty for unparseable created_at", got.Duration)
	}
}

func TestNewListReportPositions(t *testing.T) {
	got := newListReport([]backend.ExecutionSummary{
		{TeamID: "team-1", Topic: "a", Status: backend.StatusRunning},
		{ID: "team-2", Topic: "b", Status: backend.StatusCompleted, Sachstand: json.RawMessage(`{"entities":[{}]}`)},
		{TeamID: "team-3", Topic: "c", Status: backend.StatusCompleted, Sachstand: json.RawMessage(`{"entities":[]}`)},
	})

	if got.Type != "ItemList" || got.NumberOfItems != 3 {
		t.Fatalf("type/size = %q/%d, want ItemList/3", got.Type, got.NumberOfItems)
	}
	for i, item := range got.ItemListElement {
		if item.Position != i+1 {
			t.Fatalf("position[%d] = %d, want %d", i, item.Position, i+1)
		}
		if item.Type != "ListItem" {
			t.Fatalf("item type = %q, want ListItem", item.Type)
		}
	}
	if got.ItemListElement[1].Item.Identifier != "team-2" {
		t.Fatalf("identifier fallback = %q, want team-2", got.ItemListElement[1].Item.Identifier)
	}
	if got.ItemListElement[0].Item.NumberOfEntities != nil {
		t.Fatal("running item carries numberOfEntities")
	}
	if n := got.ItemListElement[1].Item.NumberOfEntities; n == nil || *n != 1 {
		t.Fatalf("completed item numberOfEntities = %v, want 1", n)
	}
	// Zero entities stays omitted in list items.
	if got.ItemListElement[2].Item.NumberOfEntities != nil {
		t.Fatal("completed item with empty entity list carries numberOfEntities")
	}
}

func TestNewListReportEmpty(t *testing.T) {
	got := newListReport(nil)
	if got.NumberOfItems != 0 {
		t.Fatalf("NumberOfItems = %d, want 0", got.NumberOfItems)
	}
	if got.ItemListElement == nil || len(got.ItemListElement) != 0 {
		t.Fatalf("ItemListElement = %v, want empty non-nil slice", got.ItemListElement)
	}
}

func TestNewErrorReport(t *testing.T) {
	at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	got := newErrorReport(CodeBackendError, "backend exploded", at)

	if got.ErrorCode != CodeBackendError {
		t.Fatalf("ErrorCode = %q, want %q", got.ErrorCode, CodeBackendError)
	}
	if got.DateCreated != "2026-01-02T10:00:00Z" {
		t.Fatalf("DateCreated = %q", got.DateCreated)
	}
}

func TestEncodePayloadPreservesNonASCII(t *testing.T) {
	encoded, err := encodePayload(map[string]string{"name": "Künstliche Intelligenz & 研究"})
	if err != nil {
		t.Fatalf("encodePayload() error = %v", err)
	}
	if !strings.Contains(encoded, "Künstliche Intelligenz & 研究") {
		t.Fatalf("encoded = %q, non-ASCII text was escaped", encoded)
	}
	if strings.Contains(encoded, `\u`) {
		t.Fatalf("encoded = %q, contains escape sequences", encoded)
	}
}
