package main

import "strings"

// getLine returns line lineIndex of content, counting from 0.
func getLine(content string, lineIndex int) string {
	rest := content
	for i := 0; i < lineIndex; i++ {
		var found bool
		_, rest, found = strings.Cut(rest, "\n")
		if !found {
			return ""
		}
	}
	line, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSuffix(line, "\r")
}

// getWordAtPosition returns the identifier touching the cursor, if any.
// A cursor just past the end of a word still selects it.
func getWordAtPosition(content string, line, char int) string {
	lineStr := getLine(content, line)
	if char < 0 || char > len(lineStr) {
		return ""
	}
	if char == len(lineStr) || !isIdentifierChar(lineStr[char]) {
		if char == 0 || !isIdentifierChar(lineStr[char-1]) {
			return ""
		}
		char--
	}

	start := char
	for start > 0 && isIdentifierChar(lineStr[start-1]) {
		start--
	}
	end := char
	for end < len(lineStr) && isIdentifierChar(lineStr[end]) {
		end++
	}
	// Numbers are not names.
	if word := lineStr[start:end]; word[0] < '0' || word[0] > '9' {
		return word
	}
	return ""
}

func isIdentifierChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}
