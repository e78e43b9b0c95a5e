package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/app"
	"github.com/Simplici0/marges/internal/bilan"
	"github.com/Simplici0/marges/internal/config"
	"github.com/Simplici0/marges/internal/ledger"
	"github.com/Simplici0/marges/internal/pricing"
	"github.com/Simplici0/marges/internal/report"
)

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T) *testClient {
	t.Helper()

	cfg := config.Config{
		Env:            "dev",
		DataDir:        t.TempDir(),
		StorageBackend: config.BackendFiles,
		SessionTTL:     time.Hour,
	}
	a, err := app.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	cookies, err := newCookieSigner("test-secret", false)
	if err != nil {
		t.Fatalf("create cookie signer: %v", err)
	}
	srv := &server{app: a, cookies: cookies, logger: zap.NewNop()}

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &testClient{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *testClient) do(method, path, body string) *http.Response {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status=%d, want %d, body=%s", resp.StatusCode, want, body)
	}
}

func TestHealthAndCategories(t *testing.T) {
	c := newTestServer(t)

	expectStatus(t, c.do(http.MethodGet, "/health", ""), http.StatusOK)

	resp := c.do(http.MethodGet, "/categories", "")
	expectStatus(t, resp, http.StatusOK)
	cats := decodeBody[[]categoryView](t, resp)
	if len(cats) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(cats))
	}
	if cats[0].Key != "petits-vanilles" || cats[0].SalePrice.String() != "4200" {
		t.Fatalf("unexpected first category: %+v", cats[0])
	}
}

func TestShowUnknownCategoryIs404(t *testing.T) {
	c := newTestServer(t)
	expectStatus(t, c.do(http.MethodGet, "/recipes/tartes", ""), http.StatusNotFound)
}

func TestEditSaveAndLedger(t *testing.T) {
	c := newTestServer(t)

	resp := c.do(http.MethodGet, "/recipes/petits-chocolat", "")
	expectStatus(t, resp, http.StatusOK)
	table := decodeBody[pricing.Table](t, resp)
	if len(table.Rows) != 10 {
		t.Fatalf("expected 10 default rows, got %d", len(table.Rows))
	}

	edit := `{"rows":[
		{"name":"Farine (gramme)","quantity":"1400","unit_price":"8"},
		{"name":"Cuillères (unité)","quantity":"130","unit_price":"67.5"}
	]}`
	resp = c.do(http.MethodPut, "/recipes/petits-chocolat", edit)
	expectStatus(t, resp, http.StatusOK)
	table = decodeBody[pricing.Table](t, resp)
	if got := table.LineTotals[0].String(); got != "11200" {
		t.Fatalf("Farine line total=%s, want 11200", got)
	}
	if len(table.Summary) != 4 || table.Summary[0].Value.String() != "19975" {
		t.Fatalf("unexpected summary: %+v", table.Summary)
	}

	expectStatus(t, c.do(http.MethodPost, "/recipes/petits-chocolat/save", ""), http.StatusOK)

	resp = c.do(http.MethodGet, "/ledger", "")
	expectStatus(t, resp, http.StatusOK)
	entries := decodeBody[[]ledger.Entry](t, resp)
	if len(entries) != 2 || entries[1].Name != "Farine (gramme)" || entries[1].UnitPrice.String() != "8" {
		t.Fatalf("unexpected ledger: %+v", entries)
	}

	// The other tier of the same flavour picks the price up through the ledger.
	resp = c.do(http.MethodGet, "/recipes/grands-chocolat", "")
	expectStatus(t, resp, http.StatusOK)
	table = decodeBody[pricing.Table](t, resp)
	if got := table.Rows[0].UnitPrice.String(); got != "8" {
		t.Fatalf("grands-chocolat Farine price=%s, want 8", got)
	}
}

func TestSaveWithoutDisplayedRecipeConflicts(t *testing.T) {
	c := newTestServer(t)

	expectStatus(t, c.do(http.MethodPost, "/recipes/petits-chocolat/save", ""), http.StatusConflict)

	expectStatus(t, c.do(http.MethodGet, "/recipes/grands-vanilles", ""), http.StatusOK)
	expectStatus(t, c.do(http.MethodPost, "/recipes/petits-chocolat/save", ""), http.StatusConflict)
}

func TestForecast(t *testing.T) {
	c := newTestServer(t)
	expectStatus(t, c.do(http.MethodGet, "/recipes/petits-chocolat", ""), http.StatusOK)

	resp := c.do(http.MethodPost, "/recipes/petits-chocolat/forecast", `{"target":"260"}`)
	expectStatus(t, resp, http.StatusOK)
	table := decodeBody[pricing.Table](t, resp)
	if got := table.Rows[0].Quantity.String(); got != "2800" {
		t.Fatalf("Farine quantity=%s, want 2800", got)
	}
	if table.UnitCount.String() != "260" {
		t.Fatalf("unit count=%s, want 260", table.UnitCount)
	}

	for _, body := range []string{`{"target":"abc"}`, `{"target":"0"}`, `{"target":"12.5"}`, ""} {
		resp := c.do(http.MethodPost, "/recipes/petits-chocolat/forecast", body)
		expectStatus(t, resp, http.StatusBadRequest)
		msg := decodeBody[errorResponse](t, resp)
		if !strings.Contains(msg.Error, "objectif de production invalide") {
			t.Fatalf("body %q: unexpected message %q", body, msg.Error)
		}
	}

	// Rejected targets leave the displayed recipe at the last valid forecast.
	resp = c.do(http.MethodGet, "/recipes/petits-chocolat/export.xlsx", "")
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != report.MediaTypeSpreadsheet {
		t.Fatalf("content type=%q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "Rapport_Couts_Petits_chocolat.xlsx") {
		t.Fatalf("content disposition=%q", cd)
	}
}

func TestBilan(t *testing.T) {
	c := newTestServer(t)

	in := bilan.Input{
		Production: []bilan.ProductionEntry{{District: "Kipé", Small: 10, LossSmall: 2, MarginPerUnit: decimal.NewFromInt(100)}},
	}
	payload, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}

	resp := c.do(http.MethodPost, "/bilan", string(payload))
	expectStatus(t, resp, http.StatusOK)
	stats := decodeBody[bilan.Stats](t, resp)
	if stats.TotalMargin.String() != "800" || stats.LossSmall.String() != "200" {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	resp = c.do(http.MethodPost, "/bilan", "")
	expectStatus(t, resp, http.StatusOK)
	stats = decodeBody[bilan.Stats](t, resp)
	if stats.TotalPayroll.String() != "5050000" {
		t.Fatalf("default payroll=%s, want 5050000", stats.TotalPayroll)
	}

	resp = c.do(http.MethodPost, "/bilan/pdf", string(payload))
	expectStatus(t, resp, http.StatusOK)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("response is not a PDF")
	}

	expectStatus(t, c.do(http.MethodPost, "/bilan", `{"production":"nope"}`), http.StatusBadRequest)
}
