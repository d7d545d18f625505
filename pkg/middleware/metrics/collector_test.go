package metrics

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/steeze-phases/pkg/middleware/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(c *Collector, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c.Middleware()(h).ServeHTTP(rec, req)
	return rec
}

func teapot(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }

func TestCollectorCountsRequests(t *testing.T) {
	c := NewCollector()
	counter := totalHttpRequests.WithLabelValues("418", "/collector/count", http.MethodPost)
	before := testutil.ToFloat64(counter)

	for i := 0; i < 2; i++ {
		rec := serve(c, http.HandlerFunc(teapot), httptest.NewRequest(http.MethodPost, "/collector/count", nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("code = %d", rec.Code)
		}
	}
	if d := testutil.ToFloat64(counter) - before; d != 2 {
		t.Fatalf("requests delta = %v", d)
	}
}

func TestCollectorImplicitOK(t *testing.T) {
	c := NewCollector()
	counter := totalHttpRequests.WithLabelValues("200", "/collector/ok", http.MethodGet)
	before := testutil.ToFloat64(counter)

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	serve(c, h, httptest.NewRequest(http.MethodGet, "/collector/ok", nil))
	if d := testutil.ToFloat64(counter) - before; d != 1 {
		t.Fatalf("requests delta = %v", d)
	}
}

func TestCollectorSkipsMetricsAndConfiguredPaths(t *testing.T) {
	c := NewCollector(WithSkipPaths(" /collector/health ", ""))
	self := totalHttpRequests.WithLabelValues("418", "/metrics", http.MethodGet)
	health := totalHttpRequests.WithLabelValues("418", "/collector/health", http.MethodGet)
	selfBefore, healthBefore := testutil.ToFloat64(self), testutil.ToFloat64(health)

	serve(c, http.HandlerFunc(teapot), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	serve(c, http.HandlerFunc(teapot), httptest.NewRequest(http.MethodGet, "/collector/health", nil))

	if testutil.ToFloat64(self) != selfBefore {
		t.Fatal("/metrics recorded itself")
	}
	if testutil.ToFloat64(health) != healthBefore {
		t.Fatal("skip path was recorded")
	}
}

func TestCollectorPathNormalizer(t *testing.T) {
	ids := regexp.MustCompile(`/[0-9]+`)
	c := NewCollector(WithPathNormalizer(func(r *http.Request) string {
		return ids.ReplaceAllString(r.URL.Path, "/{id}")
	}))
	counter := totalHttpRequests.WithLabelValues("418", "/collector/items/{id}", http.MethodGet)
	before := testutil.ToFloat64(counter)

	serve(c, http.HandlerFunc(teapot), httptest.NewRequest(http.MethodGet, "/collector/items/7", nil))
	serve(c, http.HandlerFunc(teapot), httptest.NewRequest(http.MethodGet, "/collector/items/42", nil))
	if d := testutil.ToFloat64(counter) - before; d != 2 {
		t.Fatalf("normalized delta = %v", d)
	}
}

func TestCollectorRoleLabel(t *testing.T) {
	c := NewCollector(WithAuth(auth.New(auth.Config{Secret: "s"})))
	role := totalHttpRequestsFromRole.WithLabelValues("collector-editor")
	anon := totalHttpRequestsFromRole.WithLabelValues("")
	roleBefore, anonBefore := testutil.ToFloat64(role), testutil.ToFloat64(anon)

	req := httptest.NewRequest(http.MethodGet, "/collector/role", nil)
	u := auth.User{Username: "ada", Role: auth.Role{Name: "collector-editor"}}
	serve(c, http.HandlerFunc(teapot), req.WithContext(auth.WithUser(req.Context(), u)))
	serve(c, http.HandlerFunc(teapot), httptest.NewRequest(http.MethodGet, "/collector/role", nil))

	if d := testutil.ToFloat64(role) - roleBefore; d != 1 {
		t.Fatalf("role delta = %v", d)
	}
	if d := testutil.ToFloat64(anon) - anonBefore; d != 1 {
		t.Fatalf("anonymous delta = %v", d)
	}
}

func TestResponseTimeHeader(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"explicit status": teapot,
		"body only":       func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("x")) },
		"nothing written": func(http.ResponseWriter, *http.Request) {},
		"slow": func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(5 * time.Millisecond)
			w.WriteHeader(http.StatusNoContent)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ResponseTime(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			v := rec.Header().Get(ResponseTimeHeader)
			if !strings.HasSuffix(v, "ms") {
				t.Fatalf("%s = %q", ResponseTimeHeader, v)
			}
		})
	}
}
