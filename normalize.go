package researchbridge

import (
	"time"

	"github.com/petal-labs/researchbridge/backend"
)

// spawnConfirmation is the fixed human-readable acknowledgement attached to
// every CreateAction envelope.
const spawnConfirmation = "Research execution started. Poll getStatus with the identifier to follow progress."

// Timestamp layouts the backend is known to emit, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// newCreateAction shapes a spawn acknowledgement.
func newCreateAction(topic string, created backend.ExecutionCreated) CreateAction {
	return CreateAction{
		Context:      schemaContext,
		Type:         typeCreateAction,
		ActionStatus: actionStatusPotential,
		Result: Report{
			Type:               typeResearchProject,
			Identifier:         created.TeamID,
			Name:               topic,
			DateCreated:        created.CreatedAt,
			CreativeWorkStatus: created.Status,
		},
		Description: spawnConfirmation,
	}
}

// newStatusReport shapes an execution detail snapshot. Entity count and
// duration are derived only for completed executions; dateModified rides
// along whenever the backend reported an update time.
func newStatusReport(id string, detail backend.ExecutionDetail) StatusReport {
	report := Report{
		Type:               typeResearchProject,
		Identifier:         id,
		Name:               detail.Topic,
		DateCreated:        detail.CreatedAt,
		DateModified:       detail.UpdatedAt,
		CreativeWorkStatus: detail.Status,
	}

	if detail.Status == backend.StatusCompleted {
		if count, ok := backend.EntityCount(detail.Sachstand); ok {
			report.NumberOfEntities = &count
		}
		if seconds, ok := elapsedSeconds(detail.CreatedAt, detail.UpdatedAt); ok {
			report.Duration = encodeDuration(seconds)
		}
	}

	return StatusReport{Context: schemaContext, Report: report}
}

// newListReport shapes execution summaries into a 1-based numbered list.
// An item carries numberOfEntities only when it is completed and its summary
// carries a non-empty entity list.
func newListReport(summaries []backend.ExecutionSummary) ListReport {
	items := make([]ListItem, 0, len(summaries))
	for i, summary := range summaries {
		report := Report{
			Type:               typeResearchProject,
			Identifier:         summary.Identifier(),
			Name:               summary.Topic,
			DateCreated:        summary.CreatedAt,
			DateModified:       summary.UpdatedAt,
			CreativeWorkStatus: summary.Status,
		}
		if summary.Status == backend.StatusCompleted {
			if count, ok := backend.EntityCount(summary.Sachstand); ok && count > 0 {
				report.NumberOfEntities = &count
			}
		}
		items = append(items, ListItem{
			Type:     typeListItem,
			Position: i + 1,
			Item:     report,
		})
	}

	return ListReport{
		Context:         schemaContext,
		Type:            typeItemList,
		NumberOfItems:   len(items),
		ItemListElement: items,
	}
}

// newErrorReport shapes a taxonomy code and message into the error envelope.
func newErrorReport(code, message string, at time.Time) ErrorReport {
	return ErrorReport{
		Context:     schemaContext,
		Type:        typeReport,
		ErrorCode:   code,
		Description: message,
		DateCreated: at.UTC().Format(time.RFC3339),
	}
}

// elapsedSeconds computes updated − created in seconds. Both timestamps must
// parse; otherwise the duration is omitted rather than guessed.
func elapsedSeconds(createdAt, updatedAt string) (float64, bool) {
	created, ok := parseTimestamp(createdAt)
	if !ok {
		return 0, false
	}
	updated, ok := parseTimestamp(updatedAt)
	if !ok {
		return 0, false
	}
	return updated.Sub(created).Seconds(), true
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
