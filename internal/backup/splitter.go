package backup

import "strings"

// SplitStatements 按分号切分 SQL 脚本。
// 引号（'、"、`）内的分号不切分，-- 行注释与 /* */ 块注释被丢弃。
// backslashEscapes 为 true 时，引号内的反斜杠转义下一个字符（MySQL）。
func SplitStatements(script string, backslashEscapes bool) []string {
	var (
		statements []string
		current    strings.Builder
		quote      byte
	)
	flush := func() {
		stmt := strings.TrimSpace(current.String())
		if stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]

		if quote != 0 {
			current.WriteByte(ch)
			switch {
			case ch == '\\' && backslashEscapes && quote != '`' && i+1 < len(script):
				i++
				current.WriteByte(script[i])
			case ch == quote:
				// 连续两个引号表示字面量引号
				if i+1 < len(script) && script[i+1] == quote {
					i++
					current.WriteByte(script[i])
				} else {
					quote = 0
				}
			}
			continue
		}

		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			quote = ch
			current.WriteByte(ch)
		case ch == '-' && i+1 < len(script) && script[i+1] == '-':
			for i < len(script) && script[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
		case ch == '/' && i+1 < len(script) && script[i+1] == '*':
			end := strings.Index(script[i+2:], "*/")
			if end < 0 {
				i = len(script)
			} else {
				i += end + 3
			}
			current.WriteByte(' ')
		case ch == ';':
			flush()
		default:
			current.WriteByte(ch)
		}
	}
	flush()
	return statements
}
