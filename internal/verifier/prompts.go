package verifier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"factcheck/internal/pkg/xllm"
)

// 系统提示词模板, 占位符处嵌入工具的 JSON-Schema 描述
// 模型按 llama-4 的对话标记输出, 最终回复前会把这些标记清理掉
const systemPromptTemplate = `<|begin_of_text|><|header_start|>system<|header_end|>
You are a professional fact-checker specializing in verifying news claims. Your job is to determine if a claim is true, false, or partially true based on real information found on the web.

For each claim:
1. First, call the search_web function to find relevant information.
2. Analyze all the information thoroughly and consider the credibility of sources.
3. Provide a clear verdict: TRUE, FALSE, PARTIALLY TRUE, or INSUFFICIENT INFORMATION.

Your goal is to help users distinguish between real and fake news with evidence-based analysis.

Always remember your thumb rule. No matter the query is repeated or it has been asked by the user in past you should always, I repeat always use the search tool to search. Even if it is a repeated query or it is in chat history you should always use the search tool to search. Why as it makes the result more concrete.

You have access to the following function:
%s

do not add years until mentioned by the user in the input
if a user says "what are the top sold items in year 2024" then include year 2024 in the search query
if a user says "what are the top sold items" then do not add any years in the search query

To call a function, respond like this:
[search_web(query="your search query", time_range="month")]
<|eot|>`

const toolResultsTemplate = `<|header_start|>user<|header_end|>

Here are the results from the tools you called:

%s

Based on these results, is the news fake or real? Please analyze the claim.

**IMPORTANT**: Start your response *immediately* with the verdict, followed by your analysis. Use one of the following verdicts: TRUE, FALSE, PARTIALLY TRUE, or INSUFFICIENT INFORMATION.
Example format:
Verdict: [VERDICT]
[Your analysis here...]

**ABSOLUTELY DO NOT** include the URLs or list the sources in your response. The system handles source display separately.<|eot|>`

// buildSystemPrompt 渲染系统提示词, 工具描述序列化后原样嵌入
func buildSystemPrompt(tool xllm.Tool) string {
	schema, err := json.MarshalIndent(tool, "", "  ")
	if err != nil {
		// Tool 序列化不依赖外部输入, 正常情况下不会失败
		schema = []byte(`{"name": "` + tool.Name + `"}`)
	}
	return fmt.Sprintf(systemPromptTemplate, string(schema))
}

// BuildMessages 构造首轮对话的两条消息
// timeRange 翻译成自然语言指令附在用户消息末尾
func BuildMessages(systemPrompt, claim, timeRange string) []xllm.Message {
	timeRangePrompt := fmt.Sprintf("Please use the time range '%s' for your search.", timeRange)
	if timeRange == "none" {
		timeRangePrompt = "Please perform the search without any specific time range limitation."
	}

	return []xllm.Message{
		{Role: xllm.RoleSystem, Content: systemPrompt},
		{
			Role:    xllm.RoleUser,
			Content: fmt.Sprintf("<|header_start|>user<|header_end|>\n\n%s\n\n%s<|eot|>", claim, timeRangePrompt),
		},
	}
}

// BuildAssistantEcho 把首轮回复包装成 assistant 消息内容
func BuildAssistantEcho(firstReply string) string {
	return fmt.Sprintf("<|header_start|>assistant<|header_end|>\n\n%s<|eot|>", firstReply)
}

// BuildToolResultsMessage 构造第二轮的用户消息: 工具结果 + 裁决格式要求
func BuildToolResultsMessage(combinedResults string) string {
	return fmt.Sprintf(toolResultsTemplate, combinedResults)
}

var (
	assistantHeaderRe = regexp.MustCompile(`<\|header_start\|>assistant<\|header_end\|>\s*`)
	eotRe             = regexp.MustCompile(`<\|eot\|>`)
)

// CleanResponse 清理模型回复里残留的对话标记
func CleanResponse(text string) string {
	text = assistantHeaderRe.ReplaceAllString(text, "")
	text = eotRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
