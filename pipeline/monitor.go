package pipeline

import (
	"time"

	"github.com/poiesic/searchpipe/core"
)

// Monitor provides hooks to observe query execution.
// Implementations must be safe for concurrent use; hooks are called from the
// query loop and from worker goroutines.
type Monitor interface {
	QueryIssued(q core.Query)
	CacheHit(q core.Query)
	FetchStarted(q core.Query)
	FetchFinished(q core.Query, elapsed time.Duration, err error)
	Resolved(q core.Query, items int, cached bool)
	Failed(q core.Query, err error)
	StaleDropped(q core.Query)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) QueryIssued(_ core.Query)                               {}
func (n *noopMonitor) CacheHit(_ core.Query)                                  {}
func (n *noopMonitor) FetchStarted(_ core.Query)                              {}
func (n *noopMonitor) FetchFinished(_ core.Query, _ time.Duration, _ error)   {}
func (n *noopMonitor) Resolved(_ core.Query, _ int, _ bool)                   {}
func (n *noopMonitor) Failed(_ core.Query, _ error)                           {}
func (n *noopMonitor) StaleDropped(_ core.Query)                              {}
