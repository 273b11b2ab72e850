package researchbridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// schemaContext tags every envelope with its vocabulary.
const schemaContext = "https://schema.org"

// Envelope type tags.
const (
	typeCreateAction    = "CreateAction"
	typeResearchProject = "ResearchProject"
	typeItemList        = "ItemList"
	typeListItem        = "ListItem"
	typeReport          = "Report"

	actionStatusPotential = "PotentialActionStatus"
)

// Report is the nested execution view shared by CreateAction results,
// StatusReport envelopes, and ListReport items.
type Report struct {
	Type               string `json:"@type"`
	Identifier         string `json:"identifier"`
	Name               string `json:"name,omitempty"`
	DateCreated        string `json:"dateCreated,omitempty"`
	DateModified       string `json:"dateModified,omitempty"`
	CreativeWorkStatus string `json:"creativeWorkStatus,omitempty"`
	NumberOfEntities   *int   `json:"numberOfEntities,omitempty"`
	Duration           string `json:"duration,omitempty"`
}

// CreateAction acknowledges a spawned execution. The action status stays
// "potential" because the backend runs the research asynchronously.
type CreateAction struct {
	Context      string `json:"@context"`
	Type         string `json:"@type"`
	ActionStatus string `json:"actionStatus"`
	Result       Report `json:"result"`
	Description  string `json:"description"`
}

// StatusReport is a point-in-time snapshot of one execution.
type StatusReport struct {
	Context string `json:"@context"`
	Report
}

// ListItem positions one execution report inside a ListReport.
type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Item     Report `json:"item"`
}

// ListReport is an ordered, 1-based numbering of execution summaries.
type ListReport struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	NumberOfItems   int        `json:"numberOfItems"`
	ItemListElement []ListItem `json:"itemListElement"`
}

// ErrorReport carries a stable machine code, a display message, and the
// generation timestamp.
type ErrorReport struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	ErrorCode   string `json:"errorCode"`
	Description string `json:"description"`
	DateCreated string `json:"dateCreated"`
}

// encodePayload serializes an envelope (or a passthrough result document) as
// UTF-8 JSON. HTML escaping is disabled so non-ASCII topic text and source
// URLs survive unescaped.
func encodePayload(payload any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("researchbridge: encode envelope: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
