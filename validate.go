package researchbridge

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/petal-labs/researchbridge/backend"
)

const (
	defaultInteractionLimit = 50
	minInteractionLimit     = 1
	maxInteractionLimit     = 1000

	defaultListLimit = 10
	minListLimit     = 1
	maxListLimit     = 100
)

type spawnArgs struct {
	Topic            string
	Goals            []string
	InteractionLimit int
}

type listArgs struct {
	TopicFilter  string
	StatusFilter string
	Limit        int
	Offset       int
}

// parseSpawnArgs validates spawn arguments before any backend call.
func parseSpawnArgs(args map[string]any) (spawnArgs, error) {
	topic, _, err := stringArg(args, "topic")
	if err != nil {
		return spawnArgs{}, err
	}
	if strings.TrimSpace(topic) == "" {
		return spawnArgs{}, invalidParameter("topic must be a non-empty string")
	}

	limit, ok, err := intArg(args, "interactionLimit")
	if err != nil {
		return spawnArgs{}, err
	}
	if !ok {
		limit = defaultInteractionLimit
	}
	if limit < minInteractionLimit || limit > maxInteractionLimit {
		return spawnArgs{}, invalidParameter(
			"interactionLimit must be between %d and %d, got %d",
			minInteractionLimit, maxInteractionLimit, limit,
		)
	}

	goals, err := stringSliceArg(args, "goals")
	if err != nil {
		return spawnArgs{}, err
	}

	return spawnArgs{Topic: topic, Goals: goals, InteractionLimit: limit}, nil
}

// parseExecutionID validates the executionId argument shared by getStatus
// and getResults.
func parseExecutionID(args map[string]any) (string, error) {
	id, _, err := stringArg(args, "executionId")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", invalidParameter("executionId must be a non-empty string")
	}
	return strings.TrimSpace(id), nil
}

// parseListArgs validates list arguments and applies defaults.
func parseListArgs(args map[string]any) (listArgs, error) {
	topicFilter, _, err := stringArg(args, "topicFilter")
	if err != nil {
		return listArgs{}, err
	}

	statusFilter, hasStatus, err := stringArg(args, "statusFilter")
	if err != nil {
		return listArgs{}, err
	}
	if hasStatus && statusFilter != "" && !backend.IsKnownStatus(statusFilter) {
		return listArgs{}, invalidParameter(
			"statusFilter must be one of %s, got %q",
			strings.Join(backend.Statuses(), ", "), statusFilter,
		)
	}

	limit, hasLimit, err := intArg(args, "limit")
	if err != nil {
		return listArgs{}, err
	}
	if !hasLimit {
		limit = defaultListLimit
	}
	if limit < minListLimit || limit > maxListLimit {
		return listArgs{}, invalidParameter(
			"limit must be between %d and %d, got %d", minListLimit, maxListLimit, limit,
		)
	}

	offset, hasOffset, err := intArg(args, "offset")
	if err != nil {
		return listArgs{}, err
	}
	if !hasOffset {
		offset = 0
	}
	if offset < 0 {
		return listArgs{}, invalidParameter("offset must be non-negative, got %d", offset)
	}

	return listArgs{
		TopicFilter:  topicFilter,
		StatusFilter: statusFilter,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func stringArg(args map[string]any, key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", false, invalidParameter("%s must be a string, got %T", key, raw)
	}
	return value, true, nil
}

// intArg accepts the integer encodings a decoded JSON argument map can carry.
func intArg(args map[string]any, key string) (int, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch value := raw.(type) {
	case int:
		return value, true, nil
	case int64:
		return int(value), true, nil
	case float64:
		if value != math.Trunc(value) {
			return 0, false, invalidParameter("%s must be an integer, got %v", key, value)
		}
		return int(value), true, nil
	case json.Number:
		parsed, err := value.Int64()
		if err != nil {
			return 0, false, invalidParameter("%s must be an integer, got %q", key, value.String())
		}
		return int(parsed), true, nil
	default:
		return 0, false, invalidParameter("%s must be an integer, got %T", key, raw)
	}
}

func stringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return []string{}, nil
	}

	switch value := raw.(type) {
	case []string:
		return value, nil
	case []any:
		out := make([]string, 0, len(value))
		for i, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, invalidParameter("%s[%d] must be a string, got %T", key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, invalidParameter("%s must be a list of strings, got %T", key, raw)
	}
}
