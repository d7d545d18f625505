package core

import (
	"github.com/joeydtaylor/steeze-phases/pkg/phase"
	httpx "github.com/joeydtaylor/steeze-phases/pkg/transport/httpx"
)

// compare orders two layers for a stable sort.
//
// Unassigned layers rank with the main "routing" slot, except that against a
// layer tagged exactly "routing" they always come first. That branch returns a
// fixed -1 rather than a key difference; tests pin this behavior.
func (s *Scheduler) compare(left, right *httpx.Layer) int {
	if left.Phase == right.Phase {
		return 0
	}
	if left.Phase == "" {
		if right.Phase == phase.Routing {
			return -1
		}
		return s.routingKey - s.key(right.Phase)
	}
	if right.Phase == "" {
		return -s.compare(right, left)
	}
	return s.key(left.Phase) - s.key(right.Phase)
}

// sortLocked clears unknown tags before comparing
func (s *Scheduler) key(tag string) int {
	k, _ := s.table.OrderKey(tag)
	return k
}
