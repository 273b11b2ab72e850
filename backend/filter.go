package backend

import "strings"

// filterSummaries applies the authoritative client-side filter: topic is a
// case-insensitive substring match, status an exact match. Relative order is
// preserved.
func filterSummaries(items []ExecutionSummary, topicFilter, statusFilter string) []ExecutionSummary {
	topic := strings.ToLower(strings.TrimSpace(topicFilter))
	status := strings.TrimSpace(statusFilter)
	if topic == "" && status == "" {
		return items
	}

	out := make([]ExecutionSummary, 0, len(items))
	for _, item := range items {
		if topic != "" && !strings.Contains(strings.ToLower(item.Topic), topic) {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, item)
	}
	return out
}

// paginateSummaries slices items to [offset : offset+limit] with clamped
// bounds. A limit of zero or less means no limit.
func paginateSummaries(items []ExecutionSummary, offset, limit int) []ExecutionSummary {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []ExecutionSummary{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
