package wss

import (
	"context"
	"encoding/json"

	"github.com/daodao97/xgo/xlog"
	"github.com/gorilla/websocket"

	"factcheck/internal/conf"
	"factcheck/internal/dao"
	"factcheck/internal/pkg/websearch"
	"factcheck/internal/pkg/xllm"
	"factcheck/internal/verifier"
)

type VerifyResultMessage struct {
	Type     string   `json:"type"`
	Response string   `json:"response"`
	Verdict  string   `json:"verdict"`
	Sources  []string `json:"sources"`
}

func handleVerifyMessage(conn *websocket.Conn, data []byte) {
	var msg VerifyMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		xlog.ErrorC(context.Background(), "验证消息解析错误", xlog.Err(err))
		return
	}

	if msg.Claim == "" {
		sendError(conn, "claim is required")
		return
	}
	if msg.TimeRange == "" {
		msg.TimeRange = "month"
	}
	if !verifier.IsValidTimeRange(msg.TimeRange) {
		sendError(conn, "time_range must be one of: none, day, week, month, year")
		return
	}

	llmConf := conf.Get().GetLLM("default")
	searchConf := conf.Get().GetSearch("default")
	if llmConf == nil || searchConf == nil {
		sendError(conn, "service is not configured")
		return
	}

	llm := xllm.New(llmConf)
	search := websearch.NewTavilySearchTool(searchConf.ApiKey)

	opts := []verifier.Option{}
	model := verifier.DefaultModel
	if llmConf.Model != "" {
		model = llmConf.Model
		opts = append(opts, verifier.WithModel(llmConf.Model))
	}
	v := verifier.NewVerifier(llm, search, opts...)

	// 验证放到独立协程, 读循环继续响应 ping
	go func() {
		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				xlog.ErrorC(ctx, "验证过程发生panic", xlog.Any("panic", r))
			}
		}()

		// 进度事件直接转发给客户端
		reporter := verifier.ReporterFunc(func(message string, progress int) {
			status := StatusMessage{
				Type:     "status",
				Message:  message,
				Progress: progress,
			}
			if err := sendMessage(conn, status); err != nil {
				xlog.ErrorC(ctx, "发送进度失败", xlog.Err(err))
			}
		})

		outcome, err := v.Verify(ctx, msg.Claim, msg.TimeRange, reporter)
		if err != nil {
			xlog.ErrorC(ctx, "验证失败", xlog.Err(err))
			sendError(conn, err.Error())
			return
		}

		dao.SaveVerification(ctx, msg.Claim, msg.TimeRange, model, outcome)

		result := VerifyResultMessage{
			Type:     "result",
			Response: outcome.Response,
			Verdict:  outcome.Verdict(),
			Sources:  outcome.Sources,
		}
		if err := sendMessage(conn, result); err != nil {
			xlog.ErrorC(ctx, "发送验证结果失败", xlog.Err(err))
		}
	}()
}

func sendError(conn *websocket.Conn, message string) {
	if err := sendMessage(conn, map[string]any{
		"type":    "error",
		"message": message,
	}); err != nil {
		xlog.Error("发送错误响应失败", xlog.Err(err))
	}
}
