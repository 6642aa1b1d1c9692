package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rarefy/adapters/rng"
	"rarefy/adapters/stats/engine"
	"rarefy/app"
	"rarefy/internal/testkit"
)

func newTestServer() *Server {
	eng := engine.New(rng.New(), 2)
	service := app.NewRarefactionService(eng, testkit.NewInMemoryRunRepository(), nil)
	return NewServer(service)
}

func postRun(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

const richnessRunBody = `{
	"table": {
		"taxa": ["Taxa1", "Taxa2", "Taxa3"],
		"samples": ["S1", "S2"],
		"counts": [[68, 200], [32, 200], [200, 200]]
	},
	"config": {"iterations": 10, "seed": 42, "metric": "richness"}
}`

func TestCreateRun_Richness(t *testing.T) {
	srv := newTestServer()

	rec := postRun(t, srv, richnessRunBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var outcome struct {
		RunID  string `json:"run_id"`
		Result struct {
			Depth    int64 `json:"depth"`
			Richness struct {
				Mean map[string]float64 `json:"mean"`
			} `json:"richness"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if outcome.RunID == "" {
		t.Error("response has no run_id")
	}
	if outcome.Result.Depth != 300 {
		t.Errorf("depth = %d, want 300 (minimum library size)", outcome.Result.Depth)
	}
	if got := outcome.Result.Richness.Mean["S1"]; got != 3 {
		t.Errorf("mean richness for S1 = %v, want 3", got)
	}
}

func TestCreateRun_GetRunRoundTrip(t *testing.T) {
	srv := newTestServer()

	rec := postRun(t, srv, richnessRunBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body: %s", rec.Code, rec.Body.String())
	}
	var outcome struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+outcome.RunID, nil)
	getRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status = %d; body: %s", getRec.Code, getRec.Body.String())
	}

	var run struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(getRec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decoding get response: %v", err)
	}
	if run.ID != outcome.RunID {
		t.Errorf("fetched run ID = %q, want %q", run.ID, outcome.RunID)
	}
}

func TestCreateRun_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"table": [`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "TABLE_INVALID",
		},
		{
			name: "negative count",
			body: `{
				"table": {"taxa": ["T1"], "samples": ["S1"], "counts": [[-1]]},
				"config": {"iterations": 1, "metric": "richness"}
			}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "TABLE_INVALID",
		},
		{
			name: "unknown metric",
			body: `{
				"table": {"taxa": ["T1"], "samples": ["S1"], "counts": [[10]]},
				"config": {"iterations": 1, "metric": "shannon"}
			}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONFIG_INVALID",
		},
		{
			name: "depth above every library size",
			body: `{
				"table": {"taxa": ["T1"], "samples": ["S1"], "counts": [[10]]},
				"config": {"target_depth": 500, "iterations": 1, "metric": "richness"}
			}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_DEPTH",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer()
			rec := postRun(t, srv, tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tc.wantStatus, rec.Body.String())
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tc.wantCode)
			}
		})
	}
}

func TestGetRun_NotFound(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/no-such-run", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListRuns(t *testing.T) {
	srv := newTestServer()

	if rec := postRun(t, srv, richnessRunBody); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var runs []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("list returned %d runs, want 1", len(runs))
	}
}

func TestRunReport_HTML(t *testing.T) {
	srv := newTestServer()

	rec := postRun(t, srv, richnessRunBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var outcome struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+outcome.RunID+"/report", nil)
	repRec := httptest.NewRecorder()
	srv.Router().ServeHTTP(repRec, req)
	if repRec.Code != http.StatusOK {
		t.Fatalf("report status = %d; body: %s", repRec.Code, repRec.Body.String())
	}
	if ct := repRec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !bytes.Contains(repRec.Body.Bytes(), []byte("Rarefaction run")) {
		t.Errorf("report does not mention the run; body: %.200s", repRec.Body.String())
	}
}
