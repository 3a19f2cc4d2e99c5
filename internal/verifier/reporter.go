package verifier

// Reporter 接收验证过程中的进度事件
// 纯观察者: 只许旁观, 不得影响控制流; 进度值在一次验证内单调不减
type Reporter interface {
	Report(message string, progress int)
}

// NopReporter 丢弃所有进度事件
type NopReporter struct{}

func (NopReporter) Report(string, int) {}

// ReporterFunc 把函数适配成 Reporter
type ReporterFunc func(message string, progress int)

func (f ReporterFunc) Report(message string, progress int) {
	f(message, progress)
}

// 各阶段的进度里程碑
const (
	progressFirstCall  = 25
	progressParse      = 35
	progressSearch     = 50
	progressExecute    = 60
	progressAnalyze    = 75
	progressFinalCall  = 85
	progressDirectDone = 90
	progressFinalize   = 95
	progressComplete   = 100
)
