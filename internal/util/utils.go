package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetLineAndColumn converts a rune offset into a 1-based line and column.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range []rune(src) {
		if i == pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines shows up to two lines before errorLine, the line itself
// and a caret under errorCol followed by note.
func GetContextLines(src string, errorLine, errorCol int, note string) string {
	var result bytes.Buffer
	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		lineContent := lines[i-1]
		if i != errorLine {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
			continue
		}

		margin := fmt.Sprintf("  >  %3d | ", i)
		result.WriteString(margin + lineContent + "\n")

		runes := []rune(lineContent)
		col := errorCol - 1
		if col < 0 {
			col = 0
		}
		if col > len(runes) {
			col = len(runes)
		}
		result.WriteString(blankOut(margin + string(runes[:col])))
		result.WriteString("^ " + note)
	}

	return result.String()
}

// blankOut replaces everything but tabs with spaces, keeping alignment.
func blankOut(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
