package xtools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"factcheck/internal/pkg/websearch"
)

// fakeSearch 记录收到的请求并返回脚本化的响应
type fakeSearch struct {
	lastReq websearch.SearchRequest
	resp    *websearch.SearchResponse
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, req websearch.SearchRequest) (*websearch.SearchResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestWebSearchTool_FixedParameters(t *testing.T) {
	fake := &fakeSearch{resp: &websearch.SearchResponse{}}
	tool := NewWebSearchTool(fake)

	_, err := tool.Execute(context.Background(), map[string]any{"query": "modi 15 lakh", "time_range": "day"})
	if err != nil {
		t.Fatalf("Execute 失败: %v", err)
	}

	req := fake.lastReq
	if req.Topic != "general" || req.SearchDepth != "advanced" || req.MaxResults != 15 || req.IncludeAnswer != "advanced" {
		t.Errorf("固定参数错误: %+v", req)
	}
	if req.Query != "modi 15 lakh" || req.TimeRange != "day" {
		t.Errorf("可变参数错误: %+v", req)
	}
}

func TestWebSearchTool_TimeRangeFallback(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		timeRange string
	}{
		{"缺省回退 month", map[string]any{"query": "q"}, "month"},
		{"none 不是合法搜索区间", map[string]any{"query": "q", "time_range": "none"}, "month"},
		{"乱填回退 month", map[string]any{"query": "q", "time_range": "decade"}, "month"},
		{"合法值原样保留", map[string]any{"query": "q", "time_range": "year"}, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeSearch{resp: &websearch.SearchResponse{}}
			tool := NewWebSearchTool(fake)

			if _, err := tool.Execute(context.Background(), tt.args); err != nil {
				t.Fatalf("Execute 失败: %v", err)
			}
			if fake.lastReq.TimeRange != tt.timeRange {
				t.Errorf("time_range = %q, 期望 %q", fake.lastReq.TimeRange, tt.timeRange)
			}
		})
	}
}

func TestWebSearchTool_Format(t *testing.T) {
	longContent := strings.Repeat("x", 250)
	fake := &fakeSearch{resp: &websearch.SearchResponse{
		Answer: "It really happened.",
		Results: []websearch.SearchResult{
			{Title: "First", URL: "https://a.example.com", Content: longContent},
			{Title: "", URL: "", Content: ""},
			{Title: "Third", URL: "https://c.example.com", Content: "short"},
		},
	}}
	tool := NewWebSearchTool(fake)

	result, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	if err != nil {
		t.Fatalf("Execute 失败: %v", err)
	}

	if !strings.HasPrefix(result.Text, "Search Results:\n\n") {
		t.Errorf("缺少结果头: %q", result.Text[:30])
	}
	if !strings.Contains(result.Text, "Summary: It really happened.") {
		t.Errorf("缺少 Summary 块")
	}
	if !strings.Contains(result.Text, "1. First\n   URL: https://a.example.com\n") {
		t.Errorf("结果条目格式错误:\n%s", result.Text)
	}
	if !strings.Contains(result.Text, strings.Repeat("x", 200)+"...") {
		t.Errorf("内容应截断到 200 字符并追加省略号")
	}
	if strings.Contains(result.Text, strings.Repeat("x", 201)) {
		t.Errorf("内容未截断")
	}
	if !strings.Contains(result.Text, "2. No Title\n   URL: No URL\n   Content: No content available...") {
		t.Errorf("空字段应有占位文本:\n%s", result.Text)
	}

	// 占位 "No URL" 不进来源列表
	want := []string{"https://a.example.com", "https://c.example.com"}
	if len(result.Sources) != len(want) {
		t.Fatalf("来源数量错误: %v", result.Sources)
	}
	for i := range want {
		if result.Sources[i] != want[i] {
			t.Errorf("来源[%d] = %q, 期望 %q", i, result.Sources[i], want[i])
		}
	}
}

func TestWebSearchTool_NoAnswer(t *testing.T) {
	fake := &fakeSearch{resp: &websearch.SearchResponse{
		Results: []websearch.SearchResult{{Title: "T", URL: "https://a", Content: "c"}},
	}}
	tool := NewWebSearchTool(fake)

	result, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	if err != nil {
		t.Fatalf("Execute 失败: %v", err)
	}
	if strings.Contains(result.Text, "Summary:") {
		t.Errorf("没有 answer 时不应出现 Summary 块")
	}
}

func TestWebSearchTool_SearchFailure(t *testing.T) {
	fake := &fakeSearch{err: errors.New("connection refused")}
	tool := NewWebSearchTool(fake)

	_, err := tool.Execute(context.Background(), map[string]any{"query": "q"})
	if err == nil {
		t.Fatal("期望错误但没有返回错误")
	}
	if !strings.HasPrefix(err.Error(), "Error searching with Tavily:") {
		t.Errorf("错误文本约定错误: %q", err.Error())
	}
}

func TestTools_CallTool(t *testing.T) {
	fake := &fakeSearch{resp: &websearch.SearchResponse{}}
	registry := NewTools(NewWebSearchTool(fake))

	if _, err := registry.CallTool(context.Background(), SearchToolName, map[string]any{"query": "q"}); err != nil {
		t.Errorf("已注册工具不应报错: %v", err)
	}

	_, err := registry.CallTool(context.Background(), "send_email", nil)
	if err == nil {
		t.Fatal("未注册工具应当报错")
	}
	if err.Error() != "Error: Function send_email is not implemented" {
		t.Errorf("错误文本约定错误: %q", err.Error())
	}
}
