package xtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/daodao97/xgo/xlog"
	"github.com/spf13/cast"

	"factcheck/internal/pkg/websearch"
	"factcheck/internal/pkg/xllm"
)

const (
	SearchToolName = "search_web"

	// Tavily 固定参数
	searchTopic         = "general"
	searchDepth         = "advanced"
	searchMaxResults    = 15
	searchIncludeAnswer = "advanced"

	// 结果内容给模型前的截断长度
	contentPreviewLen = 200

	defaultTimeRange = "month"
)

var validTimeRanges = []string{"day", "week", "month", "year"}

// WebSearchTool 网页搜索工具, 封装固定参数和结果格式化
type WebSearchTool struct {
	search websearch.SearchTool
	schema xllm.Tool
}

func NewWebSearchTool(search websearch.SearchTool) ToolInterface {
	return &WebSearchTool{
		search: search,
		schema: xllm.Tool{
			Name:        SearchToolName,
			Description: "Search the web for information related to a news headline or claim",
			Parameters: []xllm.Parameter{
				{
					Name:        "query",
					Description: "The search query related to the news or claim to verify",
					Type:        xllm.ParameterTypeString,
					Required:    true,
				},
				{
					Name:        "time_range",
					Description: "Time range to limit search results. Use 'none' to search without a time limit (default is 'month').",
					Type:        xllm.ParameterTypeString,
					Enum:        []string{"none", "day", "week", "month", "year"},
				},
			},
		},
	}
}

func (t *WebSearchTool) GetSchema() xllm.Tool {
	return t.schema
}

// Execute 校验参数后执行搜索并格式化结果
// 搜索服务的任何失败都转成错误返回, 不向上抛异常
func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	query := cast.ToString(args["query"])

	timeRange := cast.ToString(args["time_range"])
	if timeRange == "" {
		timeRange = defaultTimeRange
	}
	if !isValidTimeRange(timeRange) {
		xlog.WarnC(ctx, "非法的 time_range, 回退为默认值",
			xlog.String("time_range", timeRange),
			xlog.String("fallback", defaultTimeRange))
		timeRange = defaultTimeRange
	}

	resp, err := t.search.Search(ctx, websearch.SearchRequest{
		Query:         query,
		Topic:         searchTopic,
		SearchDepth:   searchDepth,
		MaxResults:    searchMaxResults,
		TimeRange:     timeRange,
		IncludeAnswer: searchIncludeAnswer,
	})
	if err != nil {
		return nil, fmt.Errorf("Error searching with Tavily: %v", err)
	}

	return formatSearchResponse(resp), nil
}

// formatSearchResponse 把搜索响应转成模型可读文本, 并单独收集来源链接
// 来源只收集真实 URL, 此处不去重, 去重在整轮调用汇总后进行
func formatSearchResponse(resp *websearch.SearchResponse) *Result {
	var b strings.Builder
	b.WriteString("Search Results:\n\n")

	if resp.Answer != "" {
		fmt.Fprintf(&b, "Summary: %s\n\n", resp.Answer)
	}

	b.WriteString("Sources:\n")
	var sources []string
	for i, r := range resp.Results {
		if i >= searchMaxResults {
			break
		}

		title := r.Title
		if title == "" {
			title = "No Title"
		}
		url := r.URL
		if url == "" {
			url = "No URL"
		}
		content := r.Content
		if content == "" {
			content = "No content available"
		}

		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
		fmt.Fprintf(&b, "   URL: %s\n", url)
		fmt.Fprintf(&b, "   Content: %s...\n\n", truncate(content, contentPreviewLen))

		if url != "No URL" {
			sources = append(sources, url)
		}
	}

	return &Result{Text: b.String(), Sources: sources}
}

// truncate 按字符数截断, 不切断多字节字符
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

func isValidTimeRange(timeRange string) bool {
	for _, v := range validTimeRanges {
		if v == timeRange {
			return true
		}
	}
	return false
}
