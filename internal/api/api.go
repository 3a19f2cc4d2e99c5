package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/daodao97/xgo/xapp"
	"github.com/daodao97/xgo/xlog"
	"github.com/gin-gonic/gin"

	"factcheck/internal/conf"
	"factcheck/internal/dao"
	"factcheck/internal/pkg/websearch"
	"factcheck/internal/pkg/xllm"
	"factcheck/internal/verifier"
)

var (
	errNoLLM    = errors.New("llm config 'default' not found")
	errNoSearch = errors.New("search config 'default' not found")
)

type VerifyRequest struct {
	Claim     string `json:"claim" binding:"required"`
	TimeRange string `json:"time_range"`
}

type VerifyResponse struct {
	Response string   `json:"response"`
	Verdict  string   `json:"verdict"`
	Sources  []string `json:"sources"`
}

func SetupRouter(e *gin.Engine) {
	e.POST("/api/verify", handleVerify)
	e.GET("/api/verifications", handleVerifications)

	// 仅开发环境: 透传原始请求体给模型, 排查与上游的参数差异
	if xapp.IsDev() {
		e.POST("/api/llm/raw", handleLLMRaw)
	}
}

func handleVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "claim is required"})
		return
	}

	if req.TimeRange == "" {
		req.TimeRange = "month"
	}
	if !verifier.IsValidTimeRange(req.TimeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time_range must be one of: none, day, week, month, year"})
		return
	}

	v, model, err := buildVerifier()
	if err != nil {
		xlog.ErrorC(c.Request.Context(), "验证器构造失败", xlog.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service is not configured"})
		return
	}

	outcome, err := v.Verify(c.Request.Context(), req.Claim, req.TimeRange, nil)
	if err != nil {
		xlog.ErrorC(c.Request.Context(), "验证失败", xlog.Err(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	dao.SaveVerification(c.Request.Context(), req.Claim, req.TimeRange, model, outcome)

	c.JSON(http.StatusOK, VerifyResponse{
		Response: outcome.Response,
		Verdict:  outcome.Verdict(),
		Sources:  outcome.Sources,
	})
}

func handleVerifications(c *gin.Context) {
	records, err := dao.RecentVerifications(20)
	if err != nil {
		xlog.ErrorC(c.Request.Context(), "查询验证记录失败", xlog.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load verifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": records})
}

func handleLLMRaw(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	llmConf := conf.Get().GetLLM("default")
	if llmConf == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "llm is not configured"})
		return
	}

	resp, err := xllm.New(llmConf).ChatRaw(c.Request.Context(), body)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// buildVerifier 按配置组装验证器, 每个请求独立构造
func buildVerifier() (*verifier.Verifier, string, error) {
	llmConf := conf.Get().GetLLM("default")
	if llmConf == nil {
		return nil, "", errNoLLM
	}
	searchConf := conf.Get().GetSearch("default")
	if searchConf == nil {
		return nil, "", errNoSearch
	}

	opts := []verifier.Option{}
	model := verifier.DefaultModel
	if llmConf.Model != "" {
		model = llmConf.Model
		opts = append(opts, verifier.WithModel(llmConf.Model))
	}

	llm := xllm.New(llmConf)
	search := websearch.NewTavilySearchTool(searchConf.ApiKey)
	return verifier.NewVerifier(llm, search, opts...), model, nil
}
