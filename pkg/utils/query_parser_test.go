package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListParams_Defaults(t *testing.T) {
	filter := ParseListParams(url.Values{})

	assert.Equal(t, uint64(1), filter.Page)
	assert.Equal(t, uint64(DefaultLimit), filter.Limit)
	assert.Equal(t, "created_at", filter.SortBy)
	assert.Equal(t, "desc", filter.SortOrder)
	assert.Empty(t, filter.Filters)
}

func TestParseListParams_InvalidValuesFallBack(t *testing.T) {
	values := url.Values{}
	values.Set("page", "0")
	values.Set("limit", "-5")
	values.Set("sort_order", "sideways")

	filter := ParseListParams(values)

	assert.Equal(t, uint64(1), filter.Page)
	assert.Equal(t, uint64(DefaultLimit), filter.Limit)
	assert.Equal(t, "desc", filter.SortOrder)
}

func TestParseListParams_LimitIsCapped(t *testing.T) {
	values := url.Values{}
	values.Set("limit", "100000")

	assert.Equal(t, uint64(MaxLimit), ParseListParams(values).Limit)
}

func TestParseListParams_FiltersJSON(t *testing.T) {
	values := url.Values{}
	values.Set("filters", `{"status":"in_progress","equipment_id":7}`)

	filter := ParseListParams(values)

	require.NotNil(t, filter.Filters)
	assert.Equal(t, "in_progress", filter.Filters["status"])
	assert.Equal(t, float64(7), filter.Filters["equipment_id"])
}

func TestParseListParams_BrokenFiltersIgnored(t *testing.T) {
	values := url.Values{}
	values.Set("filters", `{не json`)

	assert.Empty(t, ParseListParams(values).Filters)
}

func TestParseListParams_Sorting(t *testing.T) {
	values := url.Values{}
	values.Set("sort_by", "urgency")
	values.Set("sort_order", "asc")

	filter := ParseListParams(values)
	assert.Equal(t, "urgency", filter.SortBy)
	assert.Equal(t, "asc", filter.SortOrder)
}
