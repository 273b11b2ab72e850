package mcpserver

type toolDeclaration struct {
	name        string
	description string
	schema      map[string]any
}

// toolDeclarations lists the four research tools with their JSON schemas.
// Defaults and ranges are enforced by the adapter's validator; the schema
// documents them for clients.
func toolDeclarations() []toolDeclaration {
	return []toolDeclaration{
		{
			name:        "spawn",
			description: "Start a new research execution for a topic. Returns a CreateAction envelope carrying the execution identifier to poll with getStatus.",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"topic": map[string]any{
						"type":        "string",
						"description": "Research topic. Required, must be non-empty.",
					},
					"goals": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Optional research goals guiding the execution.",
					},
					"interactionLimit": map[string]any{
						"type":        "integer",
						"description": "Maximum backend interactions, 1-1000. Defaults to 50.",
						"minimum":     1,
						"maximum":     1000,
						"default":     50,
					},
				},
				"required": []string{"topic"},
			},
		},
		{
			name:        "getStatus",
			description: "Fetch the current status of a research execution as a ResearchProject report.",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"executionId": map[string]any{
						"type":        "string",
						"description": "Identifier returned by spawn.",
					},
				},
				"required": []string{"executionId"},
			},
		},
		{
			name:        "getResults",
			description: "Fetch the result document of a completed research execution. Fails with EXECUTION_NOT_COMPLETED while the execution is still in progress.",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"executionId": map[string]any{
						"type":        "string",
						"description": "Identifier returned by spawn.",
					},
				},
				"required": []string{"executionId"},
			},
		},
		{
			name:        "list",
			description: "List research executions as an ItemList, optionally filtered by topic substring and status, with offset/limit pagination.",
			schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"topicFilter": map[string]any{
						"type":        "string",
						"description": "Case-insensitive substring match on the topic.",
					},
					"statusFilter": map[string]any{
						"type":        "string",
						"enum":        []string{"pending", "running", "completed", "failed"},
						"description": "Exact status match.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum items to return, 1-100. Defaults to 10.",
						"minimum":     1,
						"maximum":     100,
						"default":     10,
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Items to skip before the first returned item.",
						"minimum":     0,
						"default":     0,
					},
				},
			},
		},
	}
}
