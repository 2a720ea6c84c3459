package agents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// scorePaths are the reply fields read by Result.Score, in order of preference.
var scorePaths = []string{"ats_score", "overall_score", "match_score", "score"}

// Result is one agent's reply: free text, or a JSON object parsed on a best-effort
// basis. Exactly one of Text and Data is meaningful; Data wins when both are set.
type Result struct {
	Text string
	Data map[string]any
}

// TextResult wraps a plain reply.
func TextResult(text string) Result {
	return Result{Text: text}
}

// ParseResult tries to read raw as a JSON object, optionally wrapped in a markdown
// fence or surrounded by prose. Anything else is kept verbatim as text.
func ParseResult(raw string) Result {
	candidate := extractJSON(raw)
	if candidate == "" || !gjson.Valid(candidate) || !gjson.Parse(candidate).IsObject() {
		return TextResult(raw)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		return TextResult(raw)
	}

	return Result{Data: data}
}

// Structured reports whether the reply was parsed into a mapping.
func (r Result) Structured() bool {
	return r.Data != nil
}

// Get looks up a gjson path in the structured reply. Text results never match.
func (r Result) Get(path string) gjson.Result {
	if !r.Structured() {
		return gjson.Result{}
	}

	raw, err := json.Marshal(r.Data)
	if err != nil {
		return gjson.Result{}
	}

	return gjson.GetBytes(raw, path)
}

// Score returns the first numeric score-like field of the reply.
func (r Result) Score() (float64, bool) {
	for _, path := range scorePaths {
		value := r.Get(path)
		if !value.Exists() {
			continue
		}

		switch value.Type {
		case gjson.Number:
			return value.Float(), true
		case gjson.String:
			// models sometimes quote numbers or answer "75/100"
			head, _, _ := strings.Cut(strings.TrimSpace(value.Str), "/")
			if parsed := gjson.Parse(strings.TrimSpace(head)); parsed.Type == gjson.Number {
				return parsed.Float(), true
			}
		}
	}

	return 0, false
}

// String renders the result for plain-text output.
func (r Result) String() string {
	if !r.Structured() {
		return r.Text
	}

	raw, err := json.MarshalIndent(r.Data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", r.Data)
	}
	return string(raw)
}

// MarshalJSON encodes text results as a JSON string and structured ones as an object.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Structured() {
		return json.Marshal(r.Data)
	}
	return json.Marshal(r.Text)
}

// UnmarshalJSON accepts the two shapes produced by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Result{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*r = TextResult(text)
		return nil
	case data[0] == '{':
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = Result{Data: obj}
		return nil
	default:
		return errors.New("agent result must be a string or an object")
	}
}

// extractJSON strips markdown fences and any prose around the outermost object.
// Replies whose first bracket opens an array yield nothing.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}

	// an object nested in a top-level array is not an object reply
	if arr := strings.Index(raw, "["); arr != -1 && arr < start {
		return ""
	}

	return raw[start : end+1]
}
