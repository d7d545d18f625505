package core

import (
	"io"
	"net/http"

	"github.com/joeydtaylor/steeze-phases/pkg/codec"
)

func inproc(fn InprocHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out, code, err := fn(r.Context(), body)
		if err != nil && r.Context().Err() != nil {
			// deadline passed: the timeout layer answers 504
			return
		}
		if err != nil {
			http.Error(w, err.Error(), statusIf(code, http.StatusInternalServerError))
			return
		}
		writeJSON(w, out, statusIf(code, http.StatusOK))
	})
}

// status answers every request with a fixed code.
func status(code int, body string) http.Handler {
	if body == "" {
		body = http.StatusText(code)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, body, code)
	})
}

func writeJSON(w http.ResponseWriter, payload []byte, code int) {
	w.Header().Set("Content-Type", codec.JSONStrict.ContentType())
	w.WriteHeader(code)
	if len(payload) > 0 {
		_, _ = w.Write(payload)
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func statusIf(s, def int) int {
	if s > 0 {
		return s
	}
	return def
}
