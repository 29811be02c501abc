package types

// Filter представляет параметры выборки списка: страница, лимит,
// фильтры (JSON-объект из query-параметра "filters") и сортировка.
type Filter struct {
	Page      uint64                 `json:"page"`
	Limit     uint64                 `json:"limit"`
	Filters   map[string]interface{} `json:"filters,omitempty"`
	SortBy    string                 `json:"sort_by,omitempty"`
	SortOrder string                 `json:"sort_order,omitempty"`
}

func (f Filter) Offset() uint64 {
	return (f.Page - 1) * f.Limit
}
