package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/docrank/internal/config"
	"github.com/dgallion1/docrank/internal/output"
	"github.com/dgallion1/docrank/internal/pipeline"
	"github.com/dgallion1/docrank/internal/stats"
)

const testAPIKey = "secret"

const travelGuide = `# Coastal Towns

Nice has beaches and nightlife for groups of friends. The promenade is great for a trip.

# Museums

The city has many museums and galleries.
`

func newTestServer(t *testing.T, start bool) *Server {
	t.Helper()
	cfg := config.Load()
	cfg.DocrankAPIKey = testAPIKey
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 1

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	norm := cfg.Normalizer()
	reg := prometheus.NewRegistry()
	orch := pipeline.NewOrchestrator(cfg, pipeline.WorkerConfig{Normalizer: norm, RunTimeout: time.Minute},
		stats.NewRunStats(time.Hour), pipeline.NewMetrics(reg), log)
	if start {
		orch.Start(context.Background())
	}
	t.Cleanup(orch.Stop)

	return NewServer(orch, norm, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), log, cfg)
}

type upload struct {
	name    string
	content string
}

func analyzeRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		if err != nil {
			t.Fatal(err)
		}
		io.WriteString(fw, f.content)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func authedGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	return req
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

var travelFields = map[string]string{
	"persona": "Travel Planner",
	"job":     "Plan a trip for a group of friends",
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/runs", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats/runs", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got content type %q", ct)
	}
}

func TestAnalyze_EndToEnd(t *testing.T) {
	s := newTestServer(t, true)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, travelFields, upload{"guide.md", travelGuide}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decodeJSON(t, rec, &accepted)
	if accepted.JobID == "" {
		t.Fatal("expected a job id")
	}

	var status pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		s.ServeHTTP(rec, authedGet("/api/analyze/"+accepted.JobID+"/status"))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from status, got %d", rec.Code)
		}
		decodeJSON(t, rec, &status)
		if status.Status.Done() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if status.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", status.Status, status.Progress.Errors)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedGet("/api/analyze/"+accepted.JobID+"/result"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from result, got %d: %s", rec.Code, rec.Body.String())
	}
	var doc output.Document
	decodeJSON(t, rec, &doc)
	if len(doc.ExtractedSections) != 2 {
		t.Fatalf("expected 2 extracted sections, got %d", len(doc.ExtractedSections))
	}
	if doc.ExtractedSections[0].SectionTitle != "Coastal Towns" || doc.ExtractedSections[0].ImportanceRank != 1 {
		t.Errorf("expected Coastal Towns first, got %+v", doc.ExtractedSections[0])
	}
	if doc.Metadata.Persona != "Travel Planner" {
		t.Errorf("unexpected persona %q", doc.Metadata.Persona)
	}
	if len(doc.SubsectionAnalysis) == 0 || doc.SubsectionAnalysis[0].RefinedText == "" {
		t.Errorf("expected refined text, got %+v", doc.SubsectionAnalysis)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedGet("/api/stats/runs"))
	var runs struct {
		Stats stats.Snapshot `json:"stats"`
	}
	decodeJSON(t, rec, &runs)
	if runs.Stats.Runs != 1 {
		t.Errorf("expected 1 run in stats, got %d", runs.Stats.Runs)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "docrank_runs_total") {
		t.Error("expected run counter in /metrics output")
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	s := newTestServer(t, false)
	guide := upload{"guide.md", travelGuide}

	cases := []struct {
		name   string
		fields map[string]string
		files  []upload
	}{
		{"missing persona", map[string]string{"job": "Plan a trip"}, []upload{guide}},
		{"stop words only", map[string]string{"persona": "the", "job": "and of"}, []upload{guide}},
		{"no files", travelFields, nil},
		{"unsupported type", travelFields, []upload{{"tool.exe", "MZ"}}},
		{"duplicate filename", travelFields, []upload{guide, guide}},
		{"bad top_k", map[string]string{"persona": "Planner", "job": "Plan", "top_k": "many"}, []upload{guide}},
		{"zero top_k", map[string]string{"persona": "Planner", "job": "Plan", "top_k": "0"}, []upload{guide}},
		{"NaN heading_boost", map[string]string{"persona": "Planner", "job": "Plan", "heading_boost": "NaN"}, []upload{guide}},
		{"Inf heading_boost", map[string]string{"persona": "Planner", "job": "Plan", "heading_boost": "+Inf"}, []upload{guide}},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, analyzeRequest(t, tc.fields, tc.files...))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, rec.Code, rec.Body.String())
		}
	}
}

func TestAnalyze_QueueFull(t *testing.T) {
	// Workers are not started, so the single queue slot stays taken.
	s := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, travelFields, upload{"a.md", travelGuide}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for first job, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, travelFields, upload{"b.md", travelGuide}))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when queue is full, got %d", rec.Code)
	}
}

func TestAnalyzeResult_PendingAndMissing(t *testing.T) {
	s := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, authedGet("/api/analyze/nope/result"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedGet("/api/analyze/nope/status"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown job status, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, analyzeRequest(t, travelFields, upload{"a.md", travelGuide}))
	var accepted struct {
		JobID string `json:"job_id"`
	}
	decodeJSON(t, rec, &accepted)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, authedGet("/api/analyze/"+accepted.JobID+"/result"))
	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202 for queued job, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":       "report.pdf",
		"../../etc/passwd": "passwd",
		`C:\docs\guide.md`: "C:_docs_guide.md",
		"":                 "unnamed",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
