// core/handlers.go
package core

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/joeydtaylor/steeze-phases/pkg/codec"
)

// InprocHandler is the signature for user-defined in-process handlers.
// 'in' is the raw request body, 'status' is HTTP status code to send.
type InprocHandler func(ctx context.Context, in []byte) (out []byte, status int, err error)

var (
	registryMu sync.RWMutex
	registry   = map[string]InprocHandler{}
)

// RegisterInproc makes a handler available under a name referenced in the manifest.
func RegisterInproc(name string, h InprocHandler) {
	registryMu.Lock()
	registry[name] = h
	registryMu.Unlock()
}

// RegisterTyped registers fn behind a strict JSON codec: unknown fields and
// trailing content in the request body are rejected with 400.
func RegisterTyped[In, Out any](name string, fn func(ctx context.Context, in In) (Out, int, error)) {
	RegisterInproc(name, func(ctx context.Context, body []byte) ([]byte, int, error) {
		in, err := codec.Decode[In](codec.JSONStrict, body)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		out, status, err := fn(ctx, in)
		if err != nil {
			return nil, status, err
		}
		b, err := codec.JSONStrict.Marshal(out)
		if err != nil {
			return nil, http.StatusInternalServerError, fmt.Errorf("encode %s response: %w", name, err)
		}
		return b, status, nil
	})
}

// LookupInproc retrieves a registered in-proc handler by name.
func LookupInproc(name string) (InprocHandler, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	h, ok := registry[name]
	return h, ok
}
