package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// trace appends name to the X-Trace response header and continues.
func trace(name string) *Handler {
	return Middleware(name, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Trace", name)
			next.ServeHTTP(w, r)
		})
	})
}

func text(name, body string) *Handler {
	return EndpointFunc(name, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Trace", name)
		_, _ = w.Write([]byte(body))
	})
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouterRunsLayersInStackOrder(t *testing.T) {
	r := NewRouter()
	r.Use("/", trace("a"), trace("b"))
	r.Use("/api", trace("c"))
	if err := r.Handle(http.MethodGet, "/api/items", text("items", "ok")); err != nil {
		t.Fatal(err)
	}

	rec := do(r, http.MethodGet, "/api/items")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", rec.Code, rec.Body.String())
	}
	got := strings.Join(rec.Header().Values("X-Trace"), ",")
	if got != "a,b,c,items" {
		t.Fatalf("trace = %q", got)
	}

	rec = do(r, http.MethodGet, "/apix")
	if got := strings.Join(rec.Header().Values("X-Trace"), ","); got != "a,b" {
		t.Fatalf("prefix guard leaked: trace = %q", got)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCompositeLayerURLParamsAndMethods(t *testing.T) {
	r := NewRouter()
	get := EndpointFunc("get", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("get " + chi.URLParam(r, "id")))
	})
	del := EndpointFunc("del", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if err := r.Route("/users/{id}", Get(get), Delete(del)); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("composite registration produced %d layers", r.Len())
	}

	if rec := do(r, http.MethodGet, "/users/42"); rec.Body.String() != "get 42" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if rec := do(r, http.MethodDelete, "/users/42"); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec := do(r, http.MethodPost, "/users/42")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("post status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, DELETE" {
		t.Fatalf("Allow = %q", allow)
	}
}

func TestAllowedMethodsAnswersOptions(t *testing.T) {
	r := NewRouter()
	_ = r.Route("/things", Get(text("list", "")), Post(text("create", "")))
	r.AllowedMethods()

	layers := r.Layers()
	if !layers[len(layers)-1].Builtin || layers[len(layers)-1].Phase != "" {
		t.Fatal("allowed-methods layer must be builtin and unassigned")
	}

	rec := do(r, http.MethodOptions, "/things")
	if rec.Code != http.StatusOK || rec.Header().Get("Allow") != "GET, POST" {
		t.Fatalf("status=%d allow=%q", rec.Code, rec.Header().Get("Allow"))
	}
	if rec := do(r, http.MethodOptions, "/nothing"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path OPTIONS status = %d", rec.Code)
	}
}

func TestOnChangeDefersPublishing(t *testing.T) {
	r := NewRouter()
	calls := 0
	r.OnChange(func() { calls++ })

	r.Use("/", text("hello", "hi"))
	if calls != 1 {
		t.Fatalf("hook calls = %d", calls)
	}
	if rec := do(r, http.MethodGet, "/"); rec.Code != http.StatusNotFound {
		t.Fatal("chain published before the owner rebuilt it")
	}
	r.Rebuild()
	if rec := do(r, http.MethodGet, "/"); rec.Body.String() != "hi" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestReorderPublishesPermutation(t *testing.T) {
	r := NewRouter()
	r.Use("/", trace("first"))
	r.Use("/", trace("second"))
	r.Reorder(func(s []*Layer) { s[0], s[1] = s[1], s[0] })

	rec := do(r, http.MethodGet, "/")
	if got := strings.Join(rec.Header().Values("X-Trace"), ","); got != "second,first" {
		t.Fatalf("trace = %q", got)
	}
}

func TestRouteRejectsBadInput(t *testing.T) {
	r := NewRouter()
	h := text("x", "")
	bad := []struct {
		pattern string
		routes  []MethodRoute
	}{
		{"nope", []MethodRoute{Get(h)}},
		{"/x", nil},
		{"/x", []MethodRoute{Method("BREW", h)}},
		{"/x", []MethodRoute{Get(h), Get(h)}},
		{"/x", []MethodRoute{Get(nil)}},
		{"/users/{id", []MethodRoute{Get(h)}},
		{"/users/{id}/{id}", []MethodRoute{Get(h)}},
	}
	for _, c := range bad {
		if err := r.Route(c.pattern, c.routes...); !errors.Is(err, ErrInvalidRoute) {
			t.Errorf("Route(%q) err = %v", c.pattern, err)
		}
	}
	if r.Len() != 0 {
		t.Fatalf("rejected routes left %d layers", r.Len())
	}
}

func TestLayerAccessors(t *testing.T) {
	r := NewRouter()
	a, b := trace("a"), trace("b")
	r.Use("", a, b)
	_ = r.Route("/r", Get(a))
	ls := r.Layers()

	if ls[0].Kind() != KindSimple || ls[0].Path() != "/" || len(ls[0].Handlers()) != 2 || ls[0].Routes() != nil {
		t.Fatalf("simple layer accessors wrong: %s", ls[0])
	}
	if ls[1].Kind() != KindComposite || ls[1].Handlers() != nil || ls[1].Routes()[0].Handler != a {
		t.Fatalf("composite layer accessors wrong: %s", ls[1])
	}
	if got := ls[1].String(); got != "route /r [GET a]" {
		t.Fatalf("String() = %q", got)
	}
}
