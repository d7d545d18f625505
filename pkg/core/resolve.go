package core

import httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"

// FindLayer returns the most recently added layer that owns h, or nil.
//
// Raw registration hands back no layer, so ownership is recovered by identity.
// The scan runs newest first: a fresh registration sits at the end of the
// stack, and if the same handler was registered twice the newest layer wins.
func FindLayer(stack []*httpx.Layer, h *httpx.Handler) *httpx.Layer {
	if h == nil {
		return nil
	}
	for i := len(stack) - 1; i >= 0; i-- {
		l := stack[i]
		switch l.Kind() {
		case httpx.KindSimple:
			for _, x := range l.Handlers() {
				if x == h {
					return l
				}
			}
		case httpx.KindComposite:
			for _, rt := range l.Routes() {
				if rt.Handler == h {
					return l
				}
			}
		}
	}
	return nil
}
