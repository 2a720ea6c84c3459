package agents

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParseResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		structured bool
		key        string
	}{
		{name: "plain object", raw: `{"ats_score": 75}`, structured: true, key: "ats_score"},
		{name: "fenced", raw: "```json\n{\"overall_score\": 80}\n```", structured: true, key: "overall_score"},
		{name: "bare fence", raw: "```\n{\"score\": 1}\n```", structured: true, key: "score"},
		{name: "prose around", raw: "Here you go:\n{\"recommended_template\": \"Modern\"}\nGood luck!", structured: true, key: "recommended_template"},
		{name: "array", raw: `[{"a": 1}]`, structured: false},
		{name: "keyword array", raw: `[{"missing_keywords":["Django"]}]`, structured: false},
		{name: "fenced array", raw: "```json\n[{\"ats_score\": 40}]\n```", structured: false},
		{name: "prose before array", raw: "Results:\n[{\"score\": 1}, {\"score\": 2}]", structured: false},
		{name: "broken", raw: `{"ats_score": 75`, structured: false},
		{name: "prose only", raw: "No JSON here", structured: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := ParseResult(tt.raw)
			if result.Structured() != tt.structured {
				t.Fatalf("structured = %v, want %v", result.Structured(), tt.structured)
			}
			if !tt.structured {
				if result.Text != tt.raw {
					t.Fatalf("expected raw text kept, got %q", result.Text)
				}
				return
			}
			if _, ok := result.Data[tt.key]; !ok {
				t.Fatalf("expected key %q in %v", tt.key, result.Data)
			}
		})
	}
}

func TestResultScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw   string
		score float64
		ok    bool
	}{
		{raw: `{"ats_score": 72}`, score: 72, ok: true},
		{raw: `{"overall_score": "85"}`, score: 85, ok: true},
		{raw: `{"score": "60/100"}`, score: 60, ok: true},
		{raw: `{"ats_score": "high", "overall_score": 90}`, score: 90, ok: true},
		{raw: `{"recommended_template": "Modern"}`, ok: false},
		{raw: `ATS score: 70`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			score, ok := ParseResult(tt.raw).Score()
			if ok != tt.ok || score != tt.score {
				t.Fatalf("Score() = %v, %v; want %v, %v", score, ok, tt.score, tt.ok)
			}
		})
	}
}

func TestResultJSONShapes(t *testing.T) {
	text := TextResult("A concise summary.")
	structured := ParseResult(`{"missing_keywords": ["Django"], "ats_score": 40}`)

	raw, err := json.Marshal(map[string]Result{"text": text, "data": structured})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"data":{"ats_score":40,"missing_keywords":["Django"]},"text":"A concise summary."}`
	if string(raw) != want {
		t.Fatalf("unexpected json:\n%s\nwant:\n%s", raw, want)
	}

	var decoded map[string]Result
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(decoded["text"], text) || !reflect.DeepEqual(decoded["data"], structured) {
		t.Fatalf("decoded results differ: %+v", decoded)
	}

	var invalid Result
	if err := json.Unmarshal([]byte(`[1, 2]`), &invalid); err == nil {
		t.Fatal("expected error for array result")
	}
}
