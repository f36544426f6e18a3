package process

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first balanced JSON object out of free-form model
// output. Markdown code fences are tolerated.
func ExtractJSON(text string) (string, bool) {
	cleaned := stripFences(text)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		ch := cleaned[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return cleaned[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ExtractProcess extracts and decodes a Process from model output.
func ExtractProcess(text string) (Process, bool) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return Process{}, false
	}
	var proc Process
	if err := json.Unmarshal([]byte(raw), &proc); err != nil {
		return Process{}, false
	}
	return proc, true
}

// ExtractSubprocess extracts and decodes a Subprocess from model output.
func ExtractSubprocess(text string) (Subprocess, bool) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return Subprocess{}, false
	}
	var sub Subprocess
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return Subprocess{}, false
	}
	return sub, true
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, "```") {
		return trimmed
	}

	var sb strings.Builder
	for _, line := range strings.Split(trimmed, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
