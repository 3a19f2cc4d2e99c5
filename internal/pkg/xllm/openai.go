package xllm

import (
	"context"
	"errors"

	"github.com/daodao97/xgo/xrequest"
	"github.com/tidwall/sjson"
)

type OpenAIOption func(*OpenAI)

func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) {
		o.model = model
	}
}

func WithAPIUrl(apiUrl string) OpenAIOption {
	return func(o *OpenAI) {
		o.apiUrl = apiUrl
	}
}

func WithAPIKey(apiKey string) OpenAIOption {
	return func(o *OpenAI) {
		o.apiKey = apiKey
	}
}

type OpenAI struct {
	model  string
	apiKey string
	apiUrl string
}

func NewOpenAI(opts ...OpenAIOption) LLM {
	openai := &OpenAI{}
	for _, opt := range opts {
		opt(openai)
	}
	return openai
}

func (o *OpenAI) request(ctx context.Context, req *xrequest.Request) (*Response, error) {
	request, err := req.
		SetDebug(false).
		SetHeader("Authorization", "Bearer "+o.apiKey).
		SetHeader("Content-Type", "application/json").
		Post(o.apiUrl + "/chat/completions")

	if err != nil {
		return nil, err
	}

	if err := request.Error(); err != nil {
		return nil, err
	}

	response := request.Json()

	result := &Response{
		Content: response.Get("choices.0.message.content").String(),
		Usage: &Usage{
			PromptTokens:     int(response.Get("usage.prompt_tokens").Int()),
			CompletionTokens: int(response.Get("usage.completion_tokens").Int()),
			TotalTokens:      int(response.Get("usage.total_tokens").Int()),
		},
	}

	return result, nil
}

func (o *OpenAI) Chat(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("messages is required")
	}

	if req.Model == "" {
		req.Model = o.model
	}

	_req := xrequest.New().SetBody(req)
	return o.request(ctx, _req)
}

// ChatRaw 透传请求体, 仅强制关闭流式输出
func (o *OpenAI) ChatRaw(ctx context.Context, body []byte) (*Response, error) {
	body, err := sjson.SetBytes(body, "stream", false)
	if err != nil {
		return nil, err
	}
	_req := xrequest.New().SetBody(body)
	return o.request(ctx, _req)
}
