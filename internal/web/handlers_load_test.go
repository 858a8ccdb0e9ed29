package web

import (
	"context"
	"database/sql"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabview/internal/sqlsource"
)

func openTestSource(t *testing.T) *sqlsource.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	stmts := []string{
		`CREATE TABLE parts (sku TEXT, qty INTEGER)`,
		`INSERT INTO parts VALUES ('A-1', 4), ('B-2', NULL), ('C-3', 10)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	db.Close()

	src, err := sqlsource.Open(context.Background(), sqlsource.Config{URL: "sqlite:" + path})
	if err != nil {
		t.Fatalf("sqlsource.Open: %v", err)
	}
	t.Cleanup(src.Close)
	return src
}

func TestImport_SQLite(t *testing.T) {
	c := newTestServer(t, testConfig(), openTestSource(t))

	_, body := c.get("/")
	if !strings.Contains(string(body), `id="import"`) {
		t.Error("import form missing with a database configured")
	}

	resp, body := c.postForm("/api/import", url.Values{"table": {"parts"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	v := decodeView(t, body)
	assertGrid(t, v.Projection, [][]string{
		{"sku", "qty"},
		{"A-1", "4"},
		{"B-2", ""},
		{"C-3", "10"},
	})
	if v.SourceName != "parts" {
		t.Errorf("source = %q", v.SourceName)
	}

	resp, body = c.postForm("/api/import", url.Values{"table": {"parts"}, "limit": {"1"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("limited import status = %d: %s", resp.StatusCode, body)
	}
	if v := decodeView(t, body); v.TotalRows != 1 {
		t.Errorf("limited import rows = %d, want 1", v.TotalRows)
	}
}

func TestImport_Errors(t *testing.T) {
	c := newTestServer(t, testConfig(), openTestSource(t))

	tests := []struct {
		name       string
		table      string
		wantStatus int
		wantCode   string
	}{
		{"missing table", "nope", http.StatusNotFound, "SRC002"},
		{"bad name", "a.b.c", http.StatusBadRequest, "SRC003"},
		{"empty name", "", http.StatusBadRequest, "SRC003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.postForm("/api/import", url.Values{"table": {tt.table}})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, body)
			}
			if e := decodeError(t, body); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}

	// Failed imports leave the session empty.
	if v := c.view(); v.HasDataset {
		t.Errorf("dataset loaded after failed imports: %+v", v)
	}
}
