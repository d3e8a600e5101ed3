// Package langdetect decides whether a code snippet is Python.
// It backs the detection of untagged Markdown code blocks.
package langdetect

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language names returned by Detect.
const (
	LangPython = "python"
	LangText   = "text"

	langGo   = "go"
	langJSON = "json"
	langBash = "bash"
)

// classifierCandidates limits the classifier to languages that commonly show
// up in documentation code blocks.
var classifierCandidates = []string{
	"Python", "Go", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON", "YAML",
}

var pythonTags = map[string]bool{
	"python":  true,
	"py":      true,
	"python3": true,
	"py3":     true,
	"pyi":     true,
}

// IsPythonTag reports whether a fenced code block info string names Python.
// Only the first word of the info string is considered.
func IsPythonTag(info string) bool {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return false
	}
	tag := strings.ToLower(strings.Trim(fields[0], "{}."))
	return pythonTags[tag]
}

// IsPython reports whether content looks like Python source.
func IsPython(content []byte) bool {
	return Detect(content) == LangPython
}

// Detect returns the detected language for content, lower-cased.
// Returns "text" if detection fails or confidence is low.
func Detect(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return LangText
	}

	// Shebang is the most reliable signal.
	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	if lang := detectByPattern(content); lang != "" {
		return lang
	}

	if lang, safe := enry.GetLanguageByClassifier(content, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}

	return LangText
}

var (
	pyDef       = regexp.MustCompile(`(?m)^\s*(async\s+)?def\s+\w+\s*\(.*\)\s*(->\s*[^:]+)?:`)
	pyClass     = regexp.MustCompile(`(?m)^\s*class\s+\w+\s*(\(.*\))?\s*:`)
	pyFromImp   = regexp.MustCompile(`(?m)^\s*from\s+[\w.]+\s+import\s+`)
	pyImport    = regexp.MustCompile(`(?m)^import\s+[\w.]+(\s+as\s+\w+)?\s*$`)
	pyBlockStmt = regexp.MustCompile(`(?m)^\s*(if|elif|for|while|with|try|except)\b[^;{]*:\s*$`)
)

// detectByPattern checks for patterns that are highly indicative of a
// language, Python first.
func detectByPattern(content []byte) string {
	trimmed := bytes.TrimSpace(content)

	if bytes.HasPrefix(trimmed, []byte("package ")) {
		return langGo
	}
	if (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`":`)) {
		return langJSON
	}
	if isPythonPattern(content) {
		return LangPython
	}
	return ""
}

func isPythonPattern(content []byte) bool {
	if bytes.Contains(content, []byte("__name__")) || bytes.Contains(content, []byte("__main__")) {
		return true
	}
	for _, re := range []*regexp.Regexp{pyDef, pyClass, pyFromImp, pyImport, pyBlockStmt} {
		if re.Match(content) {
			return true
		}
	}
	return false
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return langBash
	}
	return strings.ToLower(lang)
}
