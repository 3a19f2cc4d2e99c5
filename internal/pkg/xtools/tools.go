package xtools

import (
	"context"
	"fmt"

	"factcheck/internal/pkg/xllm"
)

// Result 一次工具执行的产出: 给模型看的文本和引用来源
type Result struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources,omitempty"`
}

type ToolInterface interface {
	GetSchema() xllm.Tool
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

type Tools struct {
	tools []ToolInterface
}

func NewTools(tools ...ToolInterface) *Tools {
	return &Tools{
		tools: tools,
	}
}

func (x *Tools) GetTools() []xllm.Tool {
	tools := make([]xllm.Tool, len(x.tools))
	for i, tool := range x.tools {
		tools[i] = tool.GetSchema()
	}
	return tools
}

func (x *Tools) AddTool(tool ...ToolInterface) {
	x.tools = append(x.tools, tool...)
}

// CallTool 按名称调度工具
// 未注册的名称返回错误而不是 panic, 错误文本会被回灌给模型
func (x *Tools) CallTool(ctx context.Context, name string, args map[string]any) (*Result, error) {
	for _, tool := range x.tools {
		if tool.GetSchema().Name == name {
			return tool.Execute(ctx, args)
		}
	}
	return nil, fmt.Errorf("Error: Function %s is not implemented", name)
}
