package xllm

import (
	"context"
	"encoding/json"

	"factcheck/internal/conf"
)

const (
	RoleUser      string = "user"
	RoleAssistant string = "assistant"
	RoleSystem    string = "system"
)

// Message 对话中的一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 一次 chat completion 请求
// 生成参数由调用方显式给出, 零值字段不会出现在请求体中
type Request struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
	Stop        []string  `json:"stop,omitempty"`
}

type Response struct {
	Content string `json:"content,omitempty"`
	Usage   *Usage `json:"usage,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Tool 以自然语言提示词方式暴露给模型的工具描述
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

type Parameter struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"` // string, number, integer, boolean
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`
}

const (
	ParameterTypeString  = "string"
	ParameterTypeNumber  = "number"
	ParameterTypeInteger = "integer"
	ParameterTypeBoolean = "boolean"
)

// MarshalJSON 输出 JSON-Schema 形态的工具描述, 供系统提示词嵌入
func (t Tool) MarshalJSON() ([]byte, error) {
	properties := make(map[string]any)
	var required []string

	for _, param := range t.Parameters {
		paramSchema := map[string]any{
			"type":        param.Type,
			"description": param.Description,
		}
		if len(param.Enum) > 0 {
			paramSchema["enum"] = param.Enum
		}
		properties[param.Name] = paramSchema
		if param.Required {
			required = append(required, param.Name)
		}
	}

	parameters := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		parameters["required"] = required
	}

	return json.Marshal(struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	}{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  parameters,
	})
}

type LLM interface {
	Chat(ctx context.Context, req Request) (*Response, error)
	ChatRaw(ctx context.Context, body []byte) (*Response, error)
}

func New(llmConf *conf.LLMConfig) LLM {
	switch llmConf.Provider {
	case "openai", "groq":
		// groq 的 chat completions 接口与 openai 协议兼容
		return NewOpenAI(
			WithAPIKey(llmConf.ApiKey),
			WithAPIUrl(llmConf.ApiUrl),
			WithModel(llmConf.Model),
		)
	}
	return nil
}
