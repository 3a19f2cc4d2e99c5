package xllm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func newStubServer(t *testing.T, gotBody *map[string]any, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("意外的请求路径: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46},
		})
	}))
}

func TestOpenAI_Chat(t *testing.T) {
	var gotBody map[string]any
	server := newStubServer(t, &gotBody, "Verdict: TRUE\nThe claim checks out.")
	defer server.Close()

	openai := NewOpenAI(
		WithModel("meta-llama/llama-4-scout-17b-16e-instruct"),
		WithAPIUrl(server.URL),
		WithAPIKey("gsk-test"),
	)

	response, err := openai.Chat(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a fact checker."},
			{Role: RoleUser, Content: "Did it happen?"},
		},
		Temperature: 0.7,
		TopP:        1,
		MaxTokens:   1024,
		Stream:      false,
	})
	if err != nil {
		t.Fatalf("Chat 失败: %+v", err)
	}
	spew.Dump(response)

	if response.Content != "Verdict: TRUE\nThe claim checks out." {
		t.Errorf("content 解析错误: %q", response.Content)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 46 {
		t.Errorf("usage 解析错误: %+v", response.Usage)
	}

	// 生成参数应当按请求原样下发
	if gotBody["model"] != "meta-llama/llama-4-scout-17b-16e-instruct" {
		t.Errorf("model 错误: %v", gotBody["model"])
	}
	if gotBody["temperature"] != 0.7 || gotBody["top_p"] != float64(1) {
		t.Errorf("采样参数错误: %v", gotBody)
	}
	if gotBody["max_tokens"] != float64(1024) {
		t.Errorf("max_tokens 错误: %v", gotBody["max_tokens"])
	}
	if gotBody["stream"] != false {
		t.Errorf("stream 应为 false, 实际 %v", gotBody["stream"])
	}
	if _, ok := gotBody["stop"]; ok {
		t.Errorf("未设置 stop 时请求体不应包含该字段")
	}
}

func TestOpenAI_ChatEmptyMessages(t *testing.T) {
	openai := NewOpenAI(WithModel("m"), WithAPIUrl("http://127.0.0.1:0"), WithAPIKey("k"))
	if _, err := openai.Chat(context.Background(), Request{}); err == nil {
		t.Fatal("空消息列表应当返回错误")
	}
}

func TestOpenAI_ChatRaw(t *testing.T) {
	var gotBody map[string]any
	server := newStubServer(t, &gotBody, "ok")
	defer server.Close()

	openai := NewOpenAI(WithAPIUrl(server.URL), WithAPIKey("gsk-test"))

	body := []byte(`{"model":"m","messages":[{"role":"user","content":"hi"}],"stream":true}`)
	if _, err := openai.ChatRaw(context.Background(), body); err != nil {
		t.Fatalf("ChatRaw 失败: %v", err)
	}

	if gotBody["stream"] != false {
		t.Errorf("ChatRaw 应强制 stream=false, 实际 %v", gotBody["stream"])
	}
}
