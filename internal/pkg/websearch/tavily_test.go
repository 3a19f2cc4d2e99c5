package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavilySearchTool_Search(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"query": "india mars mission cost",
			"answer": "India's Mangalyaan cost about 74 million dollars.",
			"results": [
				{"title": "Mangalyaan", "url": "https://example.com/a", "content": "India sent a probe to Mars.", "score": 0.98},
				{"title": "ISRO budget", "url": "https://example.com/b", "content": "The mission cost under 100 million.", "score": 0.91}
			],
			"response_time": 1.23
		}`))
	}))
	defer server.Close()

	tool := NewTavilySearchTool("tvly-test", WithSearchURL(server.URL))

	resp, err := tool.Search(context.Background(), SearchRequest{
		Query:         "india mars mission cost",
		Topic:         "general",
		SearchDepth:   "advanced",
		MaxResults:    15,
		TimeRange:     "month",
		IncludeAnswer: "advanced",
	})
	if err != nil {
		t.Fatalf("Search() 返回了意外的错误: %v", err)
	}

	if resp.Answer != "India's Mangalyaan cost about 74 million dollars." {
		t.Errorf("answer 解析错误: %q", resp.Answer)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("期望 2 条结果, 实际 %d", len(resp.Results))
	}
	if resp.Results[0].URL != "https://example.com/a" || resp.Results[1].Title != "ISRO budget" {
		t.Errorf("结果字段解析错误: %+v", resp.Results)
	}

	// 固定参数应当原样传给 Tavily
	if gotBody["search_depth"] != "advanced" || gotBody["topic"] != "general" {
		t.Errorf("请求体固定参数错误: %v", gotBody)
	}
	if gotBody["time_range"] != "month" || gotBody["max_results"] != float64(15) {
		t.Errorf("请求体可变参数错误: %v", gotBody)
	}
	if gotBody["include_answer"] != "advanced" {
		t.Errorf("include_answer 应为 advanced, 实际 %v", gotBody["include_answer"])
	}
}

func TestTavilySearchTool_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "invalid api key"}`))
	}))
	defer server.Close()

	tool := NewTavilySearchTool("bad-key", WithSearchURL(server.URL))

	_, err := tool.Search(context.Background(), SearchRequest{Query: "anything"})
	if err == nil {
		t.Fatal("期望错误但没有返回错误")
	}
}

func TestTavilySearchTool_EmptyQuery(t *testing.T) {
	tool := NewTavilySearchTool("tvly-test")
	if _, err := tool.Search(context.Background(), SearchRequest{}); err == nil {
		t.Fatal("空查询应当返回错误")
	}
}
