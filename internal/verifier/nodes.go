package verifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/daodao97/xgo/xlog"

	"factcheck/internal/pkg/funcall"
	"factcheck/internal/pkg/xflow"
	"factcheck/internal/pkg/xllm"
	"factcheck/internal/pkg/xtools"
)

// VerificationState 一次验证的工作流状态, 不跨请求共享
type VerificationState struct {
	// 输入
	Claim     string
	TimeRange string

	// 依赖
	LLM          xllm.LLM
	Tools        *xtools.Tools
	Model        string
	SystemPrompt string
	Reporter     Reporter

	// 中间状态
	Messages   []xllm.Message
	FirstReply string
	Calls      []funcall.ToolCall
	Combined   string
	Sources    []string
	FinalReply string

	// 输出
	Outcome *Outcome
}

func (s *VerificationState) chat(ctx context.Context) (*xllm.Response, error) {
	return s.LLM.Chat(ctx, xllm.Request{
		Model:       s.Model,
		Messages:    s.Messages,
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Stream:      false,
	})
}

func fail(state *VerificationState, err error) (*xflow.NodeResult[VerificationState], error) {
	return &xflow.NodeResult[VerificationState]{Success: false, Error: err, State: state}, nil
}

func succeed(state *VerificationState) (*xflow.NodeResult[VerificationState], error) {
	return &xflow.NodeResult[VerificationState]{Success: true, State: state}, nil
}

// 首轮调用节点: 构造消息并发给模型
type LLMRoundOneNode struct {
	xflow.BaseNode
}

func NewLLMRoundOneNode() *LLMRoundOneNode {
	return &LLMRoundOneNode{
		BaseNode: xflow.BaseNode{
			Name: "llm_round_one",
			Type: xflow.NodeTypeExecute,
		},
	}
}

func (l *LLMRoundOneNode) Execute(ctx context.Context, state *VerificationState) (*xflow.NodeResult[VerificationState], error) {
	state.Reporter.Report("Sending query to Llama-4...", progressFirstCall)

	state.Messages = BuildMessages(state.SystemPrompt, state.Claim, state.TimeRange)

	resp, err := state.chat(ctx)
	if err != nil {
		// 首轮传输失败直接致命, 不重试
		xlog.ErrorC(ctx, "首轮 LLM 请求失败", xlog.Err(err))
		return fail(state, fmt.Errorf("Error communicating with Groq API: %v", err))
	}

	state.FirstReply = resp.Content
	return succeed(state)
}

// 决策节点: 解析首轮回复, 判断是否需要执行搜索
type NeedSearchNode struct {
	xflow.BaseNode
}

func NewNeedSearchNode() *NeedSearchNode {
	return &NeedSearchNode{
		BaseNode: xflow.BaseNode{
			Name: "need_search",
			Type: xflow.NodeTypeDecision,
		},
	}
}

func (n *NeedSearchNode) Decide(ctx context.Context, state *VerificationState) (bool, error) {
	state.Reporter.Report("Checking if search is needed...", progressParse)

	state.Calls = funcall.Parse(state.FirstReply)
	xlog.DebugC(ctx, "解析函数调用", xlog.Int("count", len(state.Calls)))

	return len(state.Calls) > 0, nil
}

// 直接完成节点: 没有函数调用时原样返回首轮回复, 不发起第二轮
type DirectFinishNode struct {
	xflow.BaseNode
}

func NewDirectFinishNode() *DirectFinishNode {
	return &DirectFinishNode{
		BaseNode: xflow.BaseNode{
			Name: "direct_finish",
			Type: xflow.NodeTypeExecute,
		},
	}
}

func (d *DirectFinishNode) Execute(ctx context.Context, state *VerificationState) (*xflow.NodeResult[VerificationState], error) {
	state.Reporter.Report("No function calls detected, finalizing response...", progressDirectDone)

	state.Outcome = &Outcome{
		Response: state.FirstReply,
		Sources:  []string{},
	}
	return succeed(state)
}

// 工具执行节点: 按解析顺序逐个执行, 单个失败不中断整批
type ExecuteToolsNode struct {
	xflow.BaseNode
}

func NewExecuteToolsNode() *ExecuteToolsNode {
	return &ExecuteToolsNode{
		BaseNode: xflow.BaseNode{
			Name: "execute_tools",
			Type: xflow.NodeTypeExecute,
		},
	}
}

func (e *ExecuteToolsNode) Execute(ctx context.Context, state *VerificationState) (*xflow.NodeResult[VerificationState], error) {
	state.Reporter.Report(fmt.Sprintf("Searching for information within time range: '%s'...", state.TimeRange), progressSearch)

	var texts []string
	for _, call := range state.Calls {
		state.Reporter.Report(fmt.Sprintf("Executing %s...", call.Name), progressExecute)

		args := call.Parameters
		if args == nil {
			args = map[string]any{}
		}

		// 模型没给 time_range 时注入请求级的值, 工具内部的 month 兜底只在两者都缺时生效
		if call.Name == xtools.SearchToolName {
			if _, ok := args["time_range"]; !ok && state.TimeRange != "" {
				args["time_range"] = state.TimeRange
			}
		}

		result, err := state.Tools.CallTool(ctx, call.Name, args)
		if err != nil {
			// 失败调用的错误文本混入结果喂回模型, 不贡献任何来源
			xlog.WarnC(ctx, "工具执行失败",
				xlog.String("tool", call.Name),
				xlog.Err(err))
			texts = append(texts, err.Error())
			continue
		}

		texts = append(texts, result.Text)
		state.Sources = append(state.Sources, result.Sources...)
	}

	state.Combined = strings.Join(texts, "\n\n")
	return succeed(state)
}

// 第二轮调用节点: 回灌工具结果, 要求按裁决格式回复
type LLMRoundTwoNode struct {
	xflow.BaseNode
}

func NewLLMRoundTwoNode() *LLMRoundTwoNode {
	return &LLMRoundTwoNode{
		BaseNode: xflow.BaseNode{
			Name: "llm_round_two",
			Type: xflow.NodeTypeExecute,
		},
	}
}

func (l *LLMRoundTwoNode) Execute(ctx context.Context, state *VerificationState) (*xflow.NodeResult[VerificationState], error) {
	state.Reporter.Report("Analyzing gathered information...", progressAnalyze)

	state.Messages = append(state.Messages,
		xllm.Message{Role: xllm.RoleAssistant, Content: BuildAssistantEcho(state.FirstReply)},
		xllm.Message{Role: xllm.RoleUser, Content: BuildToolResultsMessage(state.Combined)},
	)

	state.Reporter.Report("Generating final analysis...", progressFinalCall)

	resp, err := state.chat(ctx)
	if err != nil {
		// 第二轮失败仍算结构化结果: 带回已收集的来源, 便于调用方展示部分进展
		xlog.ErrorC(ctx, "第二轮 LLM 请求失败", xlog.Err(err))
		state.Outcome = &Outcome{
			Response: fmt.Sprintf("Error generating final analysis: %v", err),
			Sources:  state.Sources,
		}
		return succeed(state)
	}

	state.FinalReply = resp.Content
	return succeed(state)
}

// 收尾节点: 清理对话标记, 按首见顺序去重来源
type FinalizeNode struct {
	xflow.BaseNode
}

func NewFinalizeNode() *FinalizeNode {
	return &FinalizeNode{
		BaseNode: xflow.BaseNode{
			Name: "finalize",
			Type: xflow.NodeTypeExecute,
		},
	}
}

func (f *FinalizeNode) Execute(ctx context.Context, state *VerificationState) (*xflow.NodeResult[VerificationState], error) {
	// 第二轮失败时结果已经就位
	if state.Outcome != nil {
		return succeed(state)
	}

	state.Reporter.Report("Finalizing response...", progressFinalize)

	state.Outcome = &Outcome{
		Response: CleanResponse(state.FinalReply),
		Sources:  dedupeSources(state.Sources),
	}

	state.Reporter.Report("Complete!", progressComplete)
	return succeed(state)
}

// dedupeSources 去重并保留首次出现的顺序
func dedupeSources(sources []string) []string {
	unique := make([]string, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	return unique
}
