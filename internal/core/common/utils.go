package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals an LLM response into a type T.
// Markdown fences and chatter around the payload are ignored: the payload
// runs from the first '{' to the last '}', or between the outermost
// brackets when the model answered with a bare array.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	jsonStr, ok := cut(response, "{", "}")
	if !ok {
		jsonStr, ok = cut(response, "[", "]")
	}
	if !ok {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}

func cut(s, open, closer string) (string, bool) {
	start := strings.Index(s, open)
	end := strings.LastIndex(s, closer)
	if start == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
