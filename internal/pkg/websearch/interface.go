package websearch

import "context"

// SearchRequest 一次网页搜索的全部参数
type SearchRequest struct {
	Query         string `json:"query"`
	Topic         string `json:"topic,omitempty"`
	SearchDepth   string `json:"search_depth,omitempty"` // "basic" 或 "advanced"
	MaxResults    int    `json:"max_results,omitempty"`
	TimeRange     string `json:"time_range,omitempty"` // "day" "week" "month" "year"
	IncludeAnswer string `json:"include_answer,omitempty"`
}

// SearchResult 单条网页结果
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// SearchResponse 规范化后的搜索响应
type SearchResponse struct {
	Query        string         `json:"query"`
	Answer       string         `json:"answer,omitempty"`
	Results      []SearchResult `json:"results"`
	ResponseTime float64        `json:"response_time,omitempty"`
}

// SearchTool 外部搜索服务的统一接口
type SearchTool interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}
