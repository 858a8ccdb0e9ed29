package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/tabview/internal/config"
	"github.com/JonMunkholm/tabview/internal/core"
	"github.com/JonMunkholm/tabview/internal/sqlsource"
	"github.com/JonMunkholm/tabview/internal/table"
)

// testConfig returns a config with the defaults the loader would apply.
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 10 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
		},
		Session: config.SessionConfig{
			IdleTimeout: time.Minute,
			CookieName:  "tabview_session",
		},
		Parse: config.ParseConfig{
			FilterMode: "compose",
			CSVGrammar: "quoted",
		},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testClient struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T, cfg *config.Config, source *sqlsource.Source) *testClient {
	t.Helper()

	service := core.NewService(core.ServiceConfig{
		FilterMode:    cfg.FilterMode(),
		Grammar:       cfg.Grammar(),
		SortDelay:     cfg.Session.SortDelay,
		IdleTimeout:   cfg.Session.IdleTimeout,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	})
	s := NewServer(service, source, cfg)

	srv := httptest.NewServer(s.Router())
	t.Cleanup(func() {
		srv.Close()
		_ = s.Shutdown(context.Background())
		service.Shutdown()
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &testClient{t: t, srv: srv, client: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (c *testClient) do(req *http.Request) (*http.Response, []byte) {
	c.t.Helper()
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func (c *testClient) get(path string) (*http.Response, []byte) {
	c.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, c.srv.URL+path, nil)
	return c.do(req)
}

func (c *testClient) postForm(path string, form url.Values) (*http.Response, []byte) {
	c.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, c.srv.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) upload(name, contentType string, data []byte) (*http.Response, []byte) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		c.t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, c.srv.URL+"/api/load", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *testClient) view() core.View {
	c.t.Helper()
	resp, body := c.get("/api/view")
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("GET /api/view status = %d: %s", resp.StatusCode, body)
	}
	return decodeView(c.t, body)
}

func decodeView(t *testing.T, body []byte) core.View {
	t.Helper()
	var v core.View
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode view: %v: %s", err, body)
	}
	return v
}

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("decode error: %v: %s", err, body)
	}
	return e
}

func assertGrid(t *testing.T, got [][]string, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("projection = %v, want %v", got, want)
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Fatalf("projection = %v, want %v", got, want)
		}
	}
}

const peopleCSV = "name,age,city\nAlice,30,Oslo\nBob,25,Bergen\nCarol,35,Oslo\n"

func TestIndex_StartsSession(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	resp, body := c.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Table Viewer") {
		t.Error("page title missing")
	}
	if !strings.Contains(string(body), `class="empty"`) {
		t.Error("empty-state message missing")
	}
	if strings.Contains(string(body), `id="import"`) {
		t.Error("import form shown without a database")
	}

	u, _ := url.Parse(c.srv.URL)
	if cookies := c.client.Jar.Cookies(u); len(cookies) != 1 || cookies[0].Name != "tabview_session" {
		t.Errorf("cookies = %v", cookies)
	}
	if got := resp.Header.Get("Content-Security-Policy"); strings.Contains(got, "unsafe-inline") || got == "" {
		t.Errorf("Content-Security-Policy = %q", got)
	}

	resp, body = c.get("/static/app.css")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "table.data") {
		t.Errorf("GET /static/app.css: %d", resp.StatusCode)
	}
}

func TestLoad_CSV(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	resp, body := c.upload("people.csv", "text/csv", []byte(peopleCSV))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	v := decodeView(t, body)
	assertGrid(t, v.Projection, [][]string{
		{"name", "age", "city"},
		{"Alice", "30", "Oslo"},
		{"Bob", "25", "Bergen"},
		{"Carol", "35", "Oslo"},
	})
	if v.SourceName != "people.csv" || v.TotalRows != 3 {
		t.Errorf("source = %q total = %d", v.SourceName, v.TotalRows)
	}
}

func TestLoad_UnsupportedTypeKeepsDataset(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)
	c.upload("people.csv", "text/csv", []byte(peopleCSV))

	resp, body := c.upload("report.pdf", "application/pdf", []byte("%PDF-1.4"))
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "FILE002" {
		t.Errorf("code = %q, want FILE002", e.Code)
	}

	if v := c.view(); v.SourceName != "people.csv" || v.TotalRows != 3 {
		t.Errorf("dataset changed after rejection: %q %d", v.SourceName, v.TotalRows)
	}
}

func TestLoad_Errors(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	tests := []struct {
		name       string
		file       string
		data       string
		wantStatus int
		wantCode   string
	}{
		{"empty file", "empty.csv", "", http.StatusBadRequest, "FILE005"},
		{"blank lines", "blank.csv", "\n\n  \n", http.StatusBadRequest, "FILE005"},
		{"broken workbook", "book.xlsx", "not a zip", http.StatusUnprocessableEntity, "FILE006"},
		{"too large", "big.csv", strings.Repeat("a,b\n", 300000), http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.upload(tt.file, "", []byte(tt.data))
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, body)
			}
			if e := decodeError(t, body); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	resp, body := c.postForm("/api/load", url.Values{"x": {"1"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "FILE004" {
		t.Errorf("code = %q, want FILE004", e.Code)
	}
}

func TestPaste(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	req, _ := http.NewRequest(http.MethodPost, c.srv.URL+"/api/paste", strings.NewReader("item\tqty\nbolt\t4\nnut\t"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp, body := c.do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	v := decodeView(t, body)
	assertGrid(t, v.Projection, [][]string{{"item", "qty"}, {"bolt", "4"}, {"nut", ""}})
	if v.SourceName != pasteSource {
		t.Errorf("source = %q", v.SourceName)
	}

	resp, body = c.postForm("/api/paste", url.Values{"text": {"   "}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty paste status = %d", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "FILE005" {
		t.Errorf("code = %q, want FILE005", e.Code)
	}
}

func TestFilterSortAggregate(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)
	c.upload("people.csv", "text/csv", []byte(peopleCSV))

	_, body := c.postForm("/api/filter", url.Values{"q": {"oslo"}})
	v := decodeView(t, body)
	assertGrid(t, v.Projection, [][]string{
		{"name", "age", "city"},
		{"Alice", "30", "Oslo"},
		{"Carol", "35", "Oslo"},
	})
	if v.Global != "oslo" {
		t.Errorf("global = %q", v.Global)
	}

	_, body = c.postForm("/api/sort/1", url.Values{"wait": {"1"}})
	v = decodeView(t, body)
	if v.SortStates[1] != "asc" || v.SortStates[0] != "" {
		t.Errorf("sort states = %v", v.SortStates)
	}

	_, body = c.postForm("/api/sort/1", url.Values{"wait": {"1"}})
	v = decodeView(t, body)
	if v.SortStates[1] != "desc" {
		t.Errorf("sort states = %v", v.SortStates)
	}
	assertGrid(t, v.Projection, [][]string{
		{"name", "age", "city"},
		{"Carol", "35", "Oslo"},
		{"Alice", "30", "Oslo"},
	})

	resp, body := c.postForm("/api/aggregate/1", url.Values{"kind": {"sum"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("aggregate status = %d: %s", resp.StatusCode, body)
	}
	var agg aggregateResponse
	if err := json.Unmarshal(body, &agg); err != nil {
		t.Fatal(err)
	}
	if agg.Label != "Sum: 65" {
		t.Errorf("label = %q, want Sum: 65", agg.Label)
	}

	_, body = c.postForm("/api/aggregate/0", url.Values{"kind": {"sum"}})
	agg = aggregateResponse{}
	json.Unmarshal(body, &agg)
	if agg.Label != "Error: Column contains non-numeric value(s), cannot calculate sum." {
		t.Errorf("label = %q", agg.Label)
	}
	if agg.Sum != nil {
		t.Errorf("sum = %v, want none", *agg.Sum)
	}

	_, body = c.postForm("/api/aggregate/2", nil)
	agg = aggregateResponse{}
	json.Unmarshal(body, &agg)
	if agg.Label != "Count: 2" {
		t.Errorf("label = %q, want Count: 2", agg.Label)
	}

	_, body = c.postForm("/api/filter/0", url.Values{"q": {"car"}})
	v = decodeView(t, body)
	assertGrid(t, v.Projection, [][]string{{"name", "age", "city"}, {"Carol", "35", "Oslo"}})
	if v.Columns[0] != "car" {
		t.Errorf("column filters = %v", v.Columns)
	}
	if v.SortStates[1] != "desc" {
		t.Errorf("sort lost after filter: %v", v.SortStates)
	}
	if v.AggregateMsg != "Count: 2" {
		t.Errorf("aggregate = %q", v.AggregateMsg)
	}

	// A new load resets filters and sort.
	_, body = c.upload("people.csv", "text/csv", []byte(peopleCSV))
	v = decodeView(t, body)
	if v.Global != "" || v.Columns[0] != "" || v.SortStates[1] != "" || v.VisibleRows != 3 {
		t.Errorf("state not reset: %+v", v)
	}
}

func TestSort_Deferred(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SortDelay = 30 * time.Millisecond
	c := newTestServer(t, cfg, nil)
	c.upload("people.csv", "text/csv", []byte(peopleCSV))

	_, body := c.postForm("/api/sort/1", nil)
	v := decodeView(t, body)
	if !v.Busy {
		t.Fatal("expected busy view while the sort is pending")
	}
	if v.SortStates[1] != "" {
		t.Errorf("indicator changed before the sort landed: %v", v.SortStates)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		v = c.view()
		if !v.Busy {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sort never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if v.SortStates[1] != "asc" {
		t.Errorf("sort states = %v", v.SortStates)
	}
	if v.Projection[1][0] != "Bob" {
		t.Errorf("first row = %v, want Bob", v.Projection[1])
	}
}

func TestColumnErrors(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	resp, body := c.postForm("/api/aggregate/0", url.Values{"kind": {"count"}})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("aggregate without data status = %d", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "SES001" {
		t.Errorf("code = %q, want SES001", e.Code)
	}

	c.upload("people.csv", "text/csv", []byte(peopleCSV))

	tests := []struct {
		name       string
		path       string
		form       url.Values
		wantStatus int
		wantCode   string
	}{
		{"sort out of range", "/api/sort/9", nil, http.StatusBadRequest, "VAL001"},
		{"sort not a number", "/api/sort/abc", nil, http.StatusBadRequest, "VAL001"},
		{"filter out of range", "/api/filter/3", url.Values{"q": {"x"}}, http.StatusBadRequest, "VAL001"},
		{"aggregate out of range", "/api/aggregate/5", nil, http.StatusBadRequest, "VAL001"},
		{"unknown aggregate", "/api/aggregate/1", url.Values{"kind": {"mean"}}, http.StatusBadRequest, "VAL002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := c.postForm(tt.path, tt.form)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.wantStatus, body)
			}
			if e := decodeError(t, body); e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
		})
	}
}

func TestFragments(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)
	c.upload("people.csv", "text/csv", []byte(peopleCSV))

	req, _ := http.NewRequest(http.MethodPost, c.srv.URL+"/api/filter/2", strings.NewReader(`q=<b>"x"`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	resp, body := c.do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	html := string(body)
	if !strings.Contains(html, `id="table-view"`) {
		t.Error("table fragment missing")
	}
	if !strings.Contains(html, `value="&lt;b&gt;&#34;x&#34;"`) {
		t.Errorf("filter input not restored escaped: %s", html)
	}

	req, _ = http.NewRequest(http.MethodPost, c.srv.URL+"/api/sort/7", nil)
	req.Header.Set("HX-Request", "true")
	resp, body = c.do(req)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(body), `role="alert"`) {
		t.Errorf("error fragment: %d %s", resp.StatusCode, body)
	}

	resp, body = c.get("/table")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "<table") {
		t.Errorf("GET /table: %d %s", resp.StatusCode, body)
	}
}

func TestImport_Disabled(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)

	resp, body := c.postForm("/api/import", url.Values{"table": {"items"}})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "SRC001" {
		t.Errorf("code = %q, want SRC001", e.Code)
	}
}

func TestHealth(t *testing.T) {
	c := newTestServer(t, testConfig(), nil)
	c.get("/")

	resp, body := c.get("/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var h healthResponse
	if err := json.Unmarshal(body, &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Sessions != 1 || h.Import || h.Decodes.MaxConcurrent != 2 {
		t.Errorf("health = %+v", h)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	c := newTestServer(t, cfg, nil)

	resp, _ := c.get("/api/view")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, c.srv.URL+"/api/view", nil)
	req.Header.Set("X-API-Key", "secret")
	if resp, _ := c.do(req); resp.StatusCode != http.StatusOK {
		t.Errorf("valid key status = %d", resp.StatusCode)
	}

	if resp, _ := c.get("/"); resp.StatusCode != http.StatusOK {
		t.Errorf("page should not need a key, status = %d", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2}
	c := newTestServer(t, cfg, nil)

	for i := 0; i < 2; i++ {
		if resp, _ := c.get("/healthz"); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, body := c.get("/healthz")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if e := decodeError(t, body); e.Code != "RATE001" {
		t.Errorf("code = %q, want RATE001", e.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrUnsupportedType, http.StatusUnsupportedMediaType},
		{core.ErrEmptyInput, http.StatusBadRequest},
		{core.ErrNoData, http.StatusConflict},
		{core.ErrTooManyDecodes, http.StatusServiceUnavailable},
		{sqlsource.ErrDisabled, http.StatusServiceUnavailable},
		{sqlsource.ErrInvalidTable, http.StatusBadRequest},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

// Direction values survive the JSON round trip as strings only.
func TestViewJSON_SortStates(t *testing.T) {
	v := core.View{SortStates: []string{"", table.Descending.String()}}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"sort":["","desc"]`) {
		t.Errorf("json = %s", data)
	}
}
