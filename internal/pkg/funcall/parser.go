package funcall

import (
	"strconv"
	"strings"
)

// ToolCall 从模型输出中提取到的一次函数调用
type ToolCall struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Parse 扫描模型的原始输出, 提取形如 [search_web(query="xxx", time_range="day")] 的函数调用
// 一个中括号组内允许出现多个逗号分隔的调用
// 宽松解析: 无法识别的片段直接跳过, 永远不报错; 相同输入必定得到相同输出
func Parse(text string) []ToolCall {
	var calls []ToolCall
	for _, group := range bracketGroups(text) {
		for _, expr := range splitTopLevel(group) {
			if call, ok := parseCall(expr); ok {
				calls = append(calls, call)
			}
		}
	}
	return calls
}

// bracketGroups 提取所有中括号组的内容, 非贪婪且不支持嵌套
func bracketGroups(text string) []string {
	var groups []string
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		end := strings.IndexByte(text[i+1:], ']')
		if end < 0 {
			break
		}
		groups = append(groups, text[i+1:i+1+end])
		i += end + 1
	}
	return groups
}

// splitTopLevel 按顶层逗号切分, 括号内和引号内的逗号不算切分点
func splitTopLevel(s string) []string {
	var parts []string
	var depth int
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// parseCall 解析单个调用表达式 identifier(key=value, ...)
// 表达式不合法时返回 false, 由调用方跳过
func parseCall(expr string) (ToolCall, bool) {
	s := strings.TrimSpace(expr)

	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '(' {
		return ToolCall{}, false
	}
	name := s[:i]

	body := s[i+1:]
	end := closeParen(body)
	if end < 0 {
		return ToolCall{}, false
	}

	params := make(map[string]any)
	for _, pair := range splitTopLevel(body[:end]) {
		key, value, ok := parseParam(pair)
		if !ok {
			continue
		}
		params[key] = value
	}

	return ToolCall{Name: name, Parameters: params}, true
}

// closeParen 返回与调用左括号配对的右括号位置, 引号内的括号不计
func closeParen(s string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ')':
			return i
		}
	}
	return -1
}

// parseParam 解析一个 key=value 片段
// value 支持双引号字符串, 单引号字符串, 无符号整数和不含空白的裸 token
func parseParam(pair string) (string, any, bool) {
	eq := strings.IndexByte(pair, '=')
	if eq < 0 {
		return "", nil, false
	}

	key := strings.TrimSpace(pair[:eq])
	if key == "" || !isIdent(key) {
		return "", nil, false
	}

	raw := strings.TrimSpace(pair[eq+1:])
	if raw == "" {
		return "", nil, false
	}

	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') {
		if raw[len(raw)-1] != raw[0] {
			return "", nil, false
		}
		raw = raw[1 : len(raw)-1]
	} else {
		// 裸 token 只取到第一个空白为止
		if sp := strings.IndexAny(raw, " \t"); sp >= 0 {
			raw = raw[:sp]
		}
	}

	// 先去引号再做整数判断, 所以 "42" 和 42 等价
	if isDigits(raw) {
		if n, err := strconv.Atoi(raw); err == nil {
			return key, n, true
		}
	}

	return key, raw, true
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isIdent(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return len(s) > 0
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
