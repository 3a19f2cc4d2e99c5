package verifier

import (
	"context"
	"fmt"
	"strings"

	"factcheck/internal/pkg/websearch"
	"factcheck/internal/pkg/xflow"
	"factcheck/internal/pkg/xllm"
	"factcheck/internal/pkg/xtools"
)

// Outcome 验证的最终产出, 唯一返回给调用方的值
type Outcome struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// Verdict 返回回复首行携带的裁决标签, 没有则为空串
func (o *Outcome) Verdict() string {
	if !strings.HasPrefix(o.Response, "Verdict:") {
		return ""
	}
	line := o.Response
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(line, "Verdict:")))
}

const (
	DefaultModel = "meta-llama/llama-4-scout-17b-16e-instruct"

	// 两轮调用共用的固定生成参数
	temperature = 0.7
	topP        = 1
	maxTokens   = 1024
)

// TimeRanges 请求级时间范围的合法取值
var TimeRanges = []string{"none", "day", "week", "month", "year"}

func IsValidTimeRange(timeRange string) bool {
	for _, v := range TimeRanges {
		if v == timeRange {
			return true
		}
	}
	return false
}

type Option func(v *Verifier)

func WithModel(model string) Option {
	return func(v *Verifier) {
		v.model = model
	}
}

// Verifier 新闻断言验证器: 两轮 LLM 交换 + 网页搜索工具
// 两个外部客户端都由构造方注入, 同一个实例可被多个请求并发使用
type Verifier struct {
	llm          xllm.LLM
	tools        *xtools.Tools
	model        string
	systemPrompt string
}

func NewVerifier(llm xllm.LLM, search websearch.SearchTool, opts ...Option) *Verifier {
	webSearch := xtools.NewWebSearchTool(search)

	v := &Verifier{
		llm:   llm,
		tools: xtools.NewTools(webSearch),
		model: DefaultModel,
	}
	for _, opt := range opts {
		opt(v)
	}

	v.systemPrompt = buildSystemPrompt(webSearch.GetSchema())
	return v
}

// Verify 验证一条新闻断言
// 无状态: 每次调用都是全新的两轮交换, 结束后对话即丢弃
// reporter 可以为 nil; 致命错误通过 error 返回, 错误文本以 "Error" 开头
func (v *Verifier) Verify(ctx context.Context, claim string, timeRange string, reporter Reporter) (*Outcome, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}

	state := &VerificationState{
		Claim:        claim,
		TimeRange:    timeRange,
		LLM:          v.llm,
		Tools:        v.tools,
		Model:        v.model,
		SystemPrompt: v.systemPrompt,
		Reporter:     reporter,
	}

	if err := v.buildFlow(state).Execute(ctx); err != nil {
		if !strings.HasPrefix(err.Error(), "Error") {
			err = fmt.Errorf("An error occurred during processing: %v", err)
		}
		return nil, err
	}

	return state.Outcome, nil
}

// buildFlow 组装验证工作流, 每个请求一张独立的图
func (v *Verifier) buildFlow(state *VerificationState) *xflow.Flow[VerificationState] {
	start := xflow.NewStartNode("start")
	roundOne := NewLLMRoundOneNode()
	needSearch := NewNeedSearchNode()
	directFinish := NewDirectFinishNode()
	executeTools := NewExecuteToolsNode()
	roundTwo := NewLLMRoundTwoNode()
	finalize := NewFinalizeNode()
	end := xflow.NewEndNode("end")
	endDirect := xflow.NewEndNode("end_direct")

	flow := xflow.NewFlow(state)
	flow.AddNode(start, roundOne, needSearch, directFinish, executeTools, roundTwo, finalize, end, endDirect)

	flow.AddEdge(start, roundOne)
	flow.AddEdge(roundOne, needSearch)
	flow.AddConditionalEdge(needSearch, executeTools, xflow.Cond(true))
	flow.AddConditionalEdge(needSearch, directFinish, xflow.Cond(false))
	flow.AddEdge(executeTools, roundTwo)
	flow.AddEdge(roundTwo, finalize)
	flow.AddEdge(finalize, end)
	flow.AddEdge(directFinish, endDirect)

	return flow
}
