package entity

import "time"

type SearchType string

const (
	SearchTypeSemantic SearchType = "SEMANTIC"
	SearchTypeKeyword  SearchType = "KEYWORD"
	SearchTypeHybrid   SearchType = "HYBRID"
)

type FilterOperator string

const (
	FilterEquals      FilterOperator = "EQUALS"
	FilterNotEquals   FilterOperator = "NOT_EQUALS"
	FilterGreaterThan FilterOperator = "GREATER_THAN"
	FilterLessThan    FilterOperator = "LESS_THAN"
	FilterBetween     FilterOperator = "BETWEEN"
	FilterContains    FilterOperator = "CONTAINS"
	FilterIn          FilterOperator = "IN"
)

type SearchFilter struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    any            `json:"value"`
	Value2   any            `json:"value2,omitempty"`
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

type SearchSort struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

type AdvancedSearchRequest struct {
	Query      string         `json:"query"`
	SearchType SearchType     `json:"searchType"`
	Filters    []SearchFilter `json:"filters,omitempty"`
	Sort       *SearchSort    `json:"sort,omitempty"`
	Page       int            `json:"page"`
	Size       int            `json:"size,omitempty"`
	SessionID  string         `json:"sessionId,omitempty"`
}

type AdvancedSearchResponse struct {
	Results       []SearchResult `json:"results"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int            `json:"totalElements"`
	SearchType    string         `json:"searchType"`
	TotalPages    int            `json:"totalPages"`
	HasNext       bool           `json:"hasNext"`
	HasPrevious   bool           `json:"hasPrevious"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

type SearchHistoryEntry struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"resultCount"`
	Timestamp   time.Time `json:"timestamp"`
}
