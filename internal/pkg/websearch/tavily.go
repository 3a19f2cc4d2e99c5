package websearch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/daodao97/xgo/xjson"
	"github.com/daodao97/xgo/xlog"
	"github.com/daodao97/xgo/xrequest"
)

const (
	TavilySearchURL = "https://api.tavily.com/search"
)

// TavilySearchTool Tavily 搜索工具
type TavilySearchTool struct {
	APIKey    string
	SearchURL string
	UserAgent string
}

type TavilyOption func(*TavilySearchTool)

// WithSearchURL 覆盖默认接口地址, 主要用于测试
func WithSearchURL(url string) TavilyOption {
	return func(t *TavilySearchTool) {
		t.SearchURL = url
	}
}

// NewTavilySearchTool 创建 Tavily 搜索工具
func NewTavilySearchTool(apiKey string, opts ...TavilyOption) *TavilySearchTool {
	t := &TavilySearchTool{
		APIKey:    apiKey,
		SearchURL: TavilySearchURL,
		UserAgent: "FactCheck-Agent/1.0",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// tavilySearchRequest Tavily 搜索请求结构
type tavilySearchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	Topic         string `json:"topic,omitempty"`
	SearchDepth   string `json:"search_depth,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
	TimeRange     string `json:"time_range,omitempty"`
	IncludeAnswer string `json:"include_answer,omitempty"`
}

// Search 实现 SearchTool 接口
func (t *TavilySearchTool) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	if t.APIKey == "" {
		return nil, fmt.Errorf("tavily api key is not configured")
	}

	xlog.DebugC(ctx, "tavily 搜索开始",
		xlog.String("query", req.Query),
		xlog.String("time_range", req.TimeRange),
		xlog.String("search_depth", req.SearchDepth))

	reqBody := tavilySearchRequest{
		APIKey:        t.APIKey,
		Query:         req.Query,
		Topic:         req.Topic,
		SearchDepth:   req.SearchDepth,
		MaxResults:    req.MaxResults,
		TimeRange:     req.TimeRange,
		IncludeAnswer: req.IncludeAnswer,
	}

	resp, err := xrequest.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", t.UserAgent).
		SetBody(reqBody).
		SetDebug(false).
		Post(t.SearchURL)

	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %v", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode(), resp.String())
	}

	responseJson := resp.Json()

	searchResponse := &SearchResponse{
		Query:        responseJson.Get("query").String(),
		Answer:       responseJson.Get("answer").String(),
		ResponseTime: responseJson.Get("response_time").Float(),
	}

	for _, result := range responseJson.Get("results").Array() {
		_result := xjson.New(result)
		searchResponse.Results = append(searchResponse.Results, SearchResult{
			Title:   _result.Get("title").String(),
			URL:     _result.Get("url").String(),
			Content: _result.Get("content").String(),
			Score:   _result.Get("score").Float(),
		})
	}

	xlog.DebugC(ctx, "tavily 搜索完成",
		xlog.String("query", req.Query),
		xlog.Int("results_count", len(searchResponse.Results)),
		xlog.Float64("response_time", searchResponse.ResponseTime))

	return searchResponse, nil
}
