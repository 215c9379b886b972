package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/yourorg/harsift/internal/store"
	"github.com/yourorg/harsift/pkg/types"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close() })
	srv, err := New(st)
	if err != nil {
		t.Fatal(err)
	}
	return srv, st
}

func TestListRunsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	if _, err := st.CreateRun("a.har", "out"); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var runs []types.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].HARPath != "a.har" {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestRunDetailEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	run, err := st.CreateRun("a.har", "out")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveRows(run.ID, []types.SummaryRow{{Index: 1, Method: "GET", URL: "https://x/v1", Status: 200}}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+run.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var resp struct {
		Run  *types.Run         `json:"run"`
		Rows []types.SummaryRow `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Run.ID != run.ID || len(resp.Rows) != 1 {
		t.Fatalf("unexpected detail %+v", resp)
	}
}

func TestRunDetailNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/run_unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFilesEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	outDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(outDir, "responses"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "responses", "a.response.json"), []byte(`{"ok": true}`), 0o644); err != nil {
		t.Fatal(err)
	}
	run, err := st.CreateRun("a.har", outDir)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/"+run.ID+"/responses/a.response.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Body.String() != `{"ok": true}` {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
