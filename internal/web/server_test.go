package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/spigell/resume-optimizer/internal/agents"
	"github.com/spigell/resume-optimizer/internal/ai"
	"github.com/spigell/resume-optimizer/internal/report"
	"github.com/spigell/resume-optimizer/internal/resume"
)

const keywordReply = `{"missing_keywords": ["Django"], "ats_score": 40, "recommendations": ["Add Django"]}`

type stubGenerator struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)

	if g.err != nil {
		return "", g.err
	}

	switch {
	case strings.Contains(prompt, "Write a professional summary"):
		return "Seasoned engineer.", nil
	case strings.Contains(prompt, "ATS (Applicant Tracking System) specialist"):
		return keywordReply, nil
	default:
		return `{"score": 1}`, nil
	}
}

func (g *stubGenerator) Model() string { return "stub-model" }

func (g *stubGenerator) sawPrompt(fragment string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.prompts {
		if strings.Contains(p, fragment) {
			return true
		}
	}
	return false
}

type testServer struct {
	*Server
	gen  *stubGenerator
	keys []string
}

func newTestServer(t *testing.T, serverKey string, gen *stubGenerator) *testServer {
	t.Helper()

	ts := &testServer{gen: gen}
	srv, err := New(Config{MaxReports: 2}, Deps{
		APIKey: serverKey,
		NewGenerator: func(_ context.Context, apiKey string) (ai.Generator, error) {
			ts.keys = append(ts.keys, apiKey)
			return gen, nil
		},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts.Server = srv

	return ts
}

func (ts *testServer) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := ts.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	return resp, body
}

func jsonRequest(t *testing.T, payload any) *http.Request {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, fields map[string]string, fileField, fileName, fileContent string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(fileContent)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/optimize", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func decodeError(t *testing.T, body []byte) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return e
}

func TestStaticRoutes(t *testing.T) {
	ts := newTestServer(t, "", &stubGenerator{})

	resp, body := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"healthy"`) {
		t.Fatalf("unexpected health response %d: %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected form response %d: %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(body), `type="password"`) {
		t.Fatal("expected password field for the api key")
	}

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/samples", nil))
	var samples samplesResponse
	if err := json.Unmarshal(body, &samples); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected samples response %d: %s", resp.StatusCode, body)
	}
	if samples.Resume != resume.SampleResume() || samples.JobDescription != resume.SampleJobDescription() {
		t.Fatal("samples do not match built-in texts")
	}
}

func TestOptimizeJSON(t *testing.T) {
	ts := newTestServer(t, "", &stubGenerator{})

	resp, body := ts.do(t, jsonRequest(t, map[string]string{
		"api_key":     " request-key ",
		"resume_text": "Experienced Python developer",
		"job_text":    "Seeking Django expert",
	}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var out optimizeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(ts.keys) != 1 || ts.keys[0] != "request-key" {
		t.Fatalf("expected trimmed request key, got %v", ts.keys)
	}
	if len(out.Report.Results) != len(agents.Names()) {
		t.Fatalf("expected %d results, got %d", len(agents.Names()), len(out.Report.Results))
	}
	if out.Tabs.Summary != "Seasoned engineer." {
		t.Fatalf("unexpected summary tab: %q", out.Tabs.Summary)
	}
	if !strings.Contains(out.Tabs.Keywords, "Django") {
		t.Fatalf("expected Django in keyword tab: %q", out.Tabs.Keywords)
	}

	want := agents.ParseResult(keywordReply)
	got := out.Report.Results[agents.KeywordOptimization]
	if got.String() != want.String() {
		t.Fatalf("keyword result changed:\n%s\n%s", got, want)
	}

	resp, body = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+out.ID.String()+"/download", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected download status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "resume_optimization_") {
		t.Fatalf("expected attachment, got %q", resp.Header.Get("Content-Disposition"))
	}

	downloaded, err := report.Load(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("load downloaded report: %v", err)
	}
	if downloaded.ID != out.ID {
		t.Fatalf("downloaded report id %s, want %s", downloaded.ID, out.ID)
	}
}

func TestOptimizeUsesServerKeyAndSamples(t *testing.T) {
	ts := newTestServer(t, "server-key", &stubGenerator{})

	resp, body := ts.do(t, jsonRequest(t, map[string]string{}))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if len(ts.keys) != 1 || ts.keys[0] != "server-key" {
		t.Fatalf("expected server key, got %v", ts.keys)
	}
	if !ts.gen.sawPrompt("Meridian Analytics") {
		t.Fatal("expected sample job description in prompts")
	}
}

func TestOptimizeMultipartFile(t *testing.T) {
	ts := newTestServer(t, "", &stubGenerator{})

	req := multipartRequest(t,
		map[string]string{"api_key": "key", "resume_text": "ignored pasted text", "job_text": "Seeking Django expert"},
		"resume_file", "resume.txt", "SUMMARY\nUploaded Go engineer with Kubernetes experience",
	)

	resp, body := ts.do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if !ts.gen.sawPrompt("Uploaded Go engineer") {
		t.Fatal("expected uploaded file text in prompts")
	}
	if ts.gen.sawPrompt("ignored pasted text") {
		t.Fatal("uploaded file must take precedence over pasted text")
	}
}

func TestOptimizeErrors(t *testing.T) {
	tests := []struct {
		name      string
		serverKey string
		genErr    error
		req       func(t *testing.T) *http.Request
		status    int
	}{
		{
			name: "missing key",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, map[string]string{"resume_text": "resume"})
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "key too long",
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, map[string]string{"api_key": strings.Repeat("k", 300)})
			},
			status: http.StatusBadRequest,
		},
		{
			name:      "unsupported upload",
			serverKey: "key",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, nil, "resume_file", "resume.odt", "content")
			},
			status: http.StatusBadRequest,
		},
		{
			name:      "model failure",
			serverKey: "key",
			genErr:    errors.New("quota exceeded"),
			req: func(t *testing.T) *http.Request {
				return jsonRequest(t, map[string]string{"resume_text": "resume"})
			},
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.serverKey, &stubGenerator{err: tt.genErr})

			resp, body := ts.do(t, tt.req(t))
			if resp.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, resp.StatusCode, body)
			}

			e := decodeError(t, body)
			if e.Code != tt.status || e.Error == "" {
				t.Fatalf("unexpected error body: %+v", e)
			}
			if tt.status != http.StatusBadGateway && len(ts.keys) != 0 {
				t.Fatal("generator must not be created for rejected requests")
			}
			if tt.genErr != nil && !strings.Contains(e.Error, agents.Summary) {
				t.Fatalf("expected failing agent in error, got %q", e.Error)
			}
		})
	}
}

func TestDownloadErrors(t *testing.T) {
	ts := newTestServer(t, "", &stubGenerator{})

	resp, _ := ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/reports/not-a-uuid/download", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+uuid.NewString()+"/download", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.StatusCode)
	}
}

func TestReportStoreEvictsOldest(t *testing.T) {
	store := newReportStore(2)

	first := report.New(nil, "", "a", "")
	second := report.New(nil, "", "b", "")
	third := report.New(nil, "", "c", "")

	store.put(first)
	store.put(second)
	store.put(third)

	if store.len() != 2 {
		t.Fatalf("expected 2 stored reports, got %d", store.len())
	}
	if _, ok := store.get(first.ID); ok {
		t.Fatal("oldest report should be evicted")
	}
	if _, ok := store.get(third.ID); !ok {
		t.Fatal("newest report should be kept")
	}
}
