package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

var languageExts = map[string]string{
	".go":   "go",
	".py":   "python",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".java": "java",
	".kt":   "kotlin",
	".cs":   "csharp",
	".rb":   "ruby",
	".php":  "php",
	".rs":   "rust",
	".c":    "c",
	".cpp":  "cpp",
	".h":    "c",
}

// DetectLanguage maps a file extension to a lowercase language name, or "".
func DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return languageExts[ext]
}

func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// NormalizeName trims, lowercases and collapses inner whitespace to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// CountLines returns the number of newline-delimited lines in s; "" has one.
func CountLines(s string) int {
	return strings.Count(s, "\n") + 1
}

// Dedupe returns values without repeats, keeping first-seen order.
func Dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
