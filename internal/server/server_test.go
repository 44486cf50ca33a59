package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/people/internal/metrics"
	"github.com/mmynk/people/internal/service"
	"github.com/mmynk/people/internal/storage"
	"github.com/mmynk/people/internal/storage/sqldb"
	"github.com/mmynk/people/internal/storage/sqlite"
	"github.com/mmynk/people/internal/storage/storagetest"
)

// setupTestServer starts an httptest server in front of store.
func setupTestServer(t *testing.T, store storage.Store) (*httptest.Server, *metrics.Metrics) {
	t.Helper()

	m := metrics.New()
	srv := New(service.NewPeopleService(store), m)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, m
}

func newSQLiteStore(t *testing.T) storage.Store {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"), sqldb.PoolOptions{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	return store
}

func postPerson(t *testing.T, ts *httptest.Server, body string) (int, string) {
	t.Helper()

	resp, err := http.Post(ts.URL+"/people", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /people failed: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func getPage(t *testing.T, ts *httptest.Server) (int, string) {
	t.Helper()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestCreateThenList(t *testing.T) {
	ts, _ := setupTestServer(t, newSQLiteStore(t))

	status, body := postPerson(t, ts, `{"name":"Alice"}`)
	if status != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", status)
	}
	if body != "Pessoa criada com sucesso!" {
		t.Errorf("body: got %q", body)
	}

	status, page := getPage(t, ts)
	if status != http.StatusOK {
		t.Fatalf("status: got %d, want 200", status)
	}
	if !strings.Contains(page, "<li>Alice</li>") {
		t.Errorf("expected page to contain <li>Alice</li>, got %q", page)
	}
}

func TestListEmpty(t *testing.T) {
	ts, _ := setupTestServer(t, newSQLiteStore(t))

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if string(body) != "<h1>Full Cycle rocks!</h1><ul></ul>" {
		t.Errorf("body: got %q", body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestListOrderAndEscaping(t *testing.T) {
	ts, _ := setupTestServer(t, newSQLiteStore(t))

	postPerson(t, ts, `{"name":"Ana"}`)
	postPerson(t, ts, `{"name":"<script>alert(1)</script>"}`)

	_, page := getPage(t, ts)
	if strings.Contains(page, "<script>") {
		t.Errorf("expected name to be escaped, got %q", page)
	}
	want := "<h1>Full Cycle rocks!</h1><ul><li>Ana</li><li>&lt;script&gt;alert(1)&lt;/script&gt;</li></ul>"
	if page != want {
		t.Errorf("page:\ngot  %q\nwant %q", page, want)
	}
}

func TestCreateDefaultName(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "empty object", contentType: "application/json", body: `{}`},
		{name: "null name", contentType: "application/json", body: `{"name":null}`},
		{name: "empty name", contentType: "application/json", body: `{"name":""}`},
		{name: "empty body", contentType: "application/json", body: ``},
		{name: "non-JSON content type is ignored", contentType: "text/plain", body: `{"name":"Bob"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storagetest.NewMemoryStore()
			ts, _ := setupTestServer(t, store)

			resp, err := http.Post(ts.URL+"/people", tt.contentType, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("status: got %d, want 201", resp.StatusCode)
			}

			people, _ := store.ListPeople(context.Background())
			if len(people) != 1 || people[0].Name != "Luiz" {
				t.Errorf("stored people: got %+v, want one Luiz", people)
			}
		})
	}
}

func TestCreateInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: `{"name":`},
		{name: "name is not a string", body: `{"name":42}`},
		{name: "top-level string", body: `"Alice"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storagetest.NewMemoryStore()
			ts, _ := setupTestServer(t, store)

			status, body := postPerson(t, ts, tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", status)
			}
			if body != "Corpo da requisição inválido!" {
				t.Errorf("body: got %q", body)
			}

			people, _ := store.ListPeople(context.Background())
			if len(people) != 0 {
				t.Errorf("expected nothing stored, got %+v", people)
			}
		})
	}
}

func TestCreateBodyTooLarge(t *testing.T) {
	ts, _ := setupTestServer(t, storagetest.NewMemoryStore())

	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	status, _ := postPerson(t, ts, body)
	if status != http.StatusRequestEntityTooLarge {
		t.Errorf("status: got %d, want 413", status)
	}
}

func TestStoreUnreachable(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.FailWith(errors.New("dial tcp db:3306: connection refused"))
	ts, m := setupTestServer(t, store)

	t.Run("POST returns 500", func(t *testing.T) {
		status, body := postPerson(t, ts, `{"name":"Alice"}`)
		if status != http.StatusInternalServerError {
			t.Errorf("status: got %d, want 500", status)
		}
		if body != "Houve um erro ao criar a pessoa!" {
			t.Errorf("body: got %q", body)
		}
	})

	t.Run("GET returns 500", func(t *testing.T) {
		status, body := getPage(t, ts)
		if status != http.StatusInternalServerError {
			t.Errorf("status: got %d, want 500", status)
		}
		if body != "Houve um erro ao listar as pessoas!" {
			t.Errorf("body: got %q", body)
		}
	})

	t.Run("healthz returns 503", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("status: got %d, want 503", resp.StatusCode)
		}
	})

	if got := testutil.ToFloat64(m.StoreErrors.WithLabelValues("create")); got != 1 {
		t.Errorf("store_errors_total{op=create}: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.PeopleCreated); got != 0 {
		t.Errorf("created_total: got %v, want 0", got)
	}
}

func TestConcurrentCreates(t *testing.T) {
	store := newSQLiteStore(t)
	ts, m := setupTestServer(t, store)

	const n = 25
	var wg sync.WaitGroup
	statuses := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/people", "application/json",
				strings.NewReader(fmt.Sprintf(`{"name":"person-%d"}`, i)))
			if err != nil {
				t.Errorf("POST failed: %v", err)
				return
			}
			resp.Body.Close()
			statuses <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(statuses)

	for status := range statuses {
		if status != http.StatusCreated {
			t.Errorf("status: got %d, want 201", status)
		}
	}

	people, err := store.ListPeople(context.Background())
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(people) != n {
		t.Fatalf("expected %d rows, got %d", n, len(people))
	}

	ids := make(map[int64]bool)
	names := make(map[string]bool)
	for _, p := range people {
		if ids[p.ID] {
			t.Errorf("duplicate ID %d", p.ID)
		}
		ids[p.ID] = true
		names[p.Name] = true
	}
	if len(names) != n {
		t.Errorf("expected %d distinct names, got %d", n, len(names))
	}

	if got := testutil.ToFloat64(m.PeopleCreated); got != n {
		t.Errorf("created_total: got %v, want %d", got, n)
	}
}

func TestRouting(t *testing.T) {
	ts, _ := setupTestServer(t, storagetest.NewMemoryStore())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/unknown", http.StatusNotFound},
		{http.MethodGet, "/people", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/", http.StatusMethodNotAllowed},
		{http.MethodOptions, "/people", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status: got %d, want %d", resp.StatusCode, tt.want)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}
