// Package addrspace provides an in-memory, concurrency-safe node/attribute
// store implementing the Address-Space Reader (C6) external collaborator
// of SPEC_FULL.md §6. It stands in for the real information-model
// read-service in the demo server and the mon package's tests; it does not
// attempt to be a complete OPC-UA address space (no browsing, no
// references, no type system).
package addrspace

import (
	"context"
	"sync"
	"time"

	"github.com/gopcua/opcua/ua"

	"github.com/basyskom-jvoe/open62541-go/internal/mon"
)

// key identifies one (node, attribute) cell in the store.
type key struct {
	node string
	attr ua.AttributeID
}

// Space is a map-of-nodes store, grounded on the cache-of-resources shape
// of the teacher's resource cache: a single RWMutex guards a map that
// Read/Write access independently of any particular node's write rate.
type Space struct {
	mu    sync.RWMutex
	cells map[key]*mon.Value
}

// New returns an empty Space.
func New() *Space {
	return &Space{cells: make(map[key]*mon.Value)}
}

// Write installs (or replaces) the DataValue for a (node, attribute) cell.
// storage records whether v is safe to hand out by reference (Owned) or
// must be cloned on every Read (Borrowed) — e.g. a cell backed by a value
// the simulator continues to mutate in place should be registered as
// Borrowed.
func (s *Space) Write(nodeID *ua.NodeID, attr ua.AttributeID, dv *ua.DataValue, storage mon.Storage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells[key{nodeID.String(), attr}] = &mon.Value{DV: dv, Storage: storage}
}

// Read implements mon.AddressSpaceReader. A missing node or attribute
// yields a legitimate bad-status DataValue rather than a Go error or nil,
// per SPEC_FULL.md §7's "read failure is a legitimate enqueuable value"
// rule.
func (s *Space) Read(_ context.Context, rvid mon.ReadValueID, _ ua.TimestampsToReturn) *mon.Value {
	s.mu.RLock()
	v, ok := s.cells[key{rvid.NodeID.String(), rvid.AttributeID}]
	s.mu.RUnlock()

	if !ok {
		return &mon.Value{
			Storage: mon.StorageOwned,
			DV: &ua.DataValue{
				EncodingMask:    ua.DataValueStatusCode | ua.DataValueSourceTimestamp | ua.DataValueServerTimestamp,
				Status:          ua.StatusCodeBadNodeIDUnknown,
				SourceTimestamp: time.Now(),
				ServerTimestamp: time.Now(),
			},
		}
	}

	if v.Storage == mon.StorageBorrowed {
		// The caller's snapshot must not alias a cell we might mutate
		// again before the sampler retains it.
		return &mon.Value{DV: cloneForRead(v.DV), Storage: mon.StorageBorrowed}
	}
	return v
}

func cloneForRead(dv *ua.DataValue) *ua.DataValue {
	out := *dv
	if dv.Value != nil {
		val := *dv.Value
		out.Value = &val
	}
	return &out
}
