package utils

import (
	"encoding/json"
	"net/url"
	"strconv"

	"medequip/pkg/types"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParseListParams разбирает page, limit, filters (JSON-объект), sort_by и
// sort_order. Гарантирует page >= 1 и 1 <= limit <= MaxLimit.
func ParseListParams(values url.Values) types.Filter {
	filter := types.Filter{
		Page:      1,
		Limit:     DefaultLimit,
		SortBy:    "created_at",
		SortOrder: "desc",
	}

	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.ParseUint(pageStr, 10, 64); err == nil && p > 0 {
			filter.Page = p
		}
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.ParseUint(limitStr, 10, 64); err == nil && l > 0 {
			if l > MaxLimit {
				filter.Limit = MaxLimit
			} else {
				filter.Limit = l
			}
		}
	}

	if filtersStr := values.Get("filters"); filtersStr != "" {
		parsed := make(map[string]interface{})
		if err := json.Unmarshal([]byte(filtersStr), &parsed); err == nil {
			filter.Filters = parsed
		}
	}

	if sortBy := values.Get("sort_by"); sortBy != "" {
		filter.SortBy = sortBy
	}
	if sortOrder := values.Get("sort_order"); sortOrder == "asc" || sortOrder == "desc" {
		filter.SortOrder = sortOrder
	}

	return filter
}
