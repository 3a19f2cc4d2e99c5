package dao

import (
	"context"
	"encoding/json"
	"time"

	"github.com/daodao97/xgo/xdb"
	"github.com/daodao97/xgo/xlog"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"factcheck/internal/verifier"
)

var VerificationModel xdb.Model

func Init() {
	VerificationModel = xdb.New(
		"verification_record",
	)
}

// SaveVerification 落库一条验证记录, 失败只记日志不影响调用方
func SaveVerification(ctx context.Context, claim, timeRange, model string, outcome *verifier.Outcome) {
	sources, err := json.Marshal(outcome.Sources)
	if err != nil {
		sources = []byte("[]")
	}

	_, err = VerificationModel.Insert(xdb.Record{
		"claim":      claim,
		"time_range": timeRange,
		"model":      model,
		"response":   outcome.Response,
		"verdict":    outcome.Verdict(),
		"sources":    string(sources),
	})
	if err != nil {
		xlog.WarnC(ctx, "验证记录落库失败", xlog.Err(err))
	}
}

type VerificationRecord struct {
	Claim     string   `json:"claim"`
	TimeRange string   `json:"time_range"`
	Model     string   `json:"model"`
	Response  string   `json:"response"`
	Verdict   string   `json:"verdict"`
	Sources   []string `json:"sources"`
	CreatedAt string   `json:"created_at"`
}

// RecentVerifications 返回最近 limit 条验证记录, 新的在前
func RecentVerifications(limit int) ([]VerificationRecord, error) {
	list, err := VerificationModel.Selects(xdb.OrderByDesc("id"))
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	records := make([]VerificationRecord, 0, len(list))
	for _, item := range list {
		var sources []string
		if err := json.Unmarshal([]byte(item.GetString("sources")), &sources); err != nil {
			sources = []string{}
		}
		records = append(records, VerificationRecord{
			Claim:     item.GetString("claim"),
			TimeRange: item.GetString("time_range"),
			Model:     item.GetString("model"),
			Response:  item.GetString("response"),
			Verdict:   item.GetString("verdict"),
			Sources:   sources,
			CreatedAt: item.GetTime("created_at").Format(time.DateTime),
		})
	}
	return records, nil
}
