package mon

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/gopcua/opcua/ua"
	"github.com/sirupsen/logrus"
)

// ItemType distinguishes value-change monitoring from event monitoring.
// Event monitoring is a Non-goal (SPEC_FULL.md §1); EventNotify items are
// accepted so the delete-path fix in §9 has something to exercise, but
// Sample is a no-op for them.
type ItemType int

const (
	ChangeNotify ItemType = iota
	EventNotify
)

// MonitoredItem (C3) samples one attribute on a timer, detects change
// under its Trigger filter, and feeds notifications into its own bounded
// FIFO and its Subscription's global queue.
//
// Per SPEC_FULL.md §5, its queue, currentQueueSize and lastSampledValue
// are guarded by its owning Subscription's mutex, the same way a
// single-mutex-per-subscription discipline is described there. The item's
// own callbackMu guards only the sample-callback registration state.
type MonitoredItem struct {
	ID           uint32
	Subscription *Subscription

	NodeID      *ua.NodeID
	AttributeID ua.AttributeID
	IndexRange  string

	TimestampsToReturn ua.TimestampsToReturn
	Trigger            ua.DataChangeTrigger

	MaxQueueSize  uint32
	DiscardOldest bool

	SamplingInterval time.Duration
	Type             ItemType

	Reader    AddressSpaceReader
	Scheduler Scheduler
	Log       logrus.FieldLogger

	queue            list.List // of *Notification, local FIFO, tail = newest
	currentQueueSize uint32
	lastSampledValue []byte

	callbackMu         sync.Mutex
	callbackID         CallbackID
	callbackRegistered bool
	inflight           sync.WaitGroup
}

// NewMonitoredItem zero-initializes a MonitoredItem with the spec's
// defaults: TimestampsToReturn = Source, an empty queue.
func NewMonitoredItem(id uint32, sub *Subscription) *MonitoredItem {
	return &MonitoredItem{
		ID:                 id,
		Subscription:       sub,
		TimestampsToReturn: ua.TimestampsToReturnSource,
		Trigger:            ua.DataChangeTriggerStatusValue,
		MaxQueueSize:       1,
		DiscardOldest:      true,
		Type:               ChangeNotify,
	}
}

// RegisterSampleCallback is idempotent: the first call registers a
// periodic callback at SamplingInterval invoking Sample; later calls are a
// no-op.
func (m *MonitoredItem) RegisterSampleCallback() error {
	m.callbackMu.Lock()
	defer m.callbackMu.Unlock()

	if m.callbackRegistered {
		return nil
	}
	if m.Scheduler == nil {
		return nil
	}

	id, err := m.Scheduler.AddRepeatedCallback(m.SamplingInterval, m.Sample)
	if err != nil {
		return err
	}
	m.callbackID = id
	m.callbackRegistered = true
	return nil
}

// UnregisterSampleCallback is idempotent. It clears the registered flag
// before asking the scheduler to remove the callback, so that an in-flight
// tick which observes the flag cleared treats itself as a no-op (§4.2).
// It then waits for any tick already past that check to finish, so Delete
// can safely drain the queues afterward (§5 cancellation).
func (m *MonitoredItem) UnregisterSampleCallback() error {
	m.callbackMu.Lock()
	if !m.callbackRegistered {
		m.callbackMu.Unlock()
		return nil
	}
	m.callbackRegistered = false
	id := m.callbackID
	m.callbackMu.Unlock()

	var err error
	if m.Scheduler != nil {
		err = m.Scheduler.RemoveRepeatedCallback(id)
	}
	m.inflight.Wait()
	return err
}

// Sample is the tick invoked by the scheduler. For an EventNotify item it
// is a no-op (event monitoring is unimplemented). For a ChangeNotify item
// it reads the attribute from the address space and runs sampleWithValue.
func (m *MonitoredItem) Sample() {
	m.callbackMu.Lock()
	if !m.callbackRegistered {
		m.callbackMu.Unlock()
		return
	}
	m.inflight.Add(1)
	m.callbackMu.Unlock()
	defer m.inflight.Done()

	if m.Type != ChangeNotify {
		if m.Log != nil {
			m.Log.WithField("subscription", m.Subscription.ID).WithField("item", m.ID).Debug("sample called on non-change-notify item, skipping")
		}
		return
	}

	var v *Value
	if m.Reader != nil {
		v = m.Reader.Read(context.Background(), ReadValueID{
			NodeID:      m.NodeID,
			AttributeID: m.AttributeID,
			IndexRange:  m.IndexRange,
		}, m.TimestampsToReturn)
	}
	if v == nil {
		v = badStatusValue(ua.StatusCodeBadNoDataAvailable, time.Now())
	}

	m.Subscription.mu.Lock()
	defer m.Subscription.mu.Unlock()
	m.sampleWithValue(v)
}

// sampleWithValue is the critical path described in SPEC_FULL.md §4.2. The
// caller must hold m.Subscription.mu.
func (m *MonitoredItem) sampleWithValue(v *Value) bool {
	changed, snapshot := detectValueChange(v.DV, m.Trigger, m.lastSampledValue)
	if !changed {
		return false
	}

	n := &Notification{Item: m}

	// snapshot may alias v.DV's encode buffer or m.lastSampledValue; make
	// an independent copy before it outlives this call (the "stack to
	// heap" promotion of SPEC_FULL.md §4.1/§9 — in Go this is simply
	// "don't retain a slice someone else might still mutate").
	owned := make([]byte, len(snapshot))
	copy(owned, snapshot)

	// Populate notification.Value: Retain clones if the read was
	// Borrowed, or moves (reuses the pointer) if Owned, per §4.2 step 4.
	n.Value = &Value{DV: v.Retain(), Storage: StorageOwned}

	// Point of no return: swap lastSampledValue for the new snapshot.
	m.lastSampledValue = owned

	n.localElem = m.queue.PushBack(n)
	m.currentQueueSize++

	m.Subscription.ensureQueueSpace(m, n)
	return true
}

// Delete implements the Monitored Item delete path (C3). Per the §9 fix,
// queue/registration/list cleanup always runs; only the change-notify
// specific "drain queues" step is skipped for EventNotify items, so no
// item is ever leaked regardless of type.
func (m *MonitoredItem) Delete() {
	if m.Log != nil {
		m.Log.WithField("subscription", m.Subscription.ID).WithField("item", m.ID).Warn("deleting monitored item")
	}

	if err := m.UnregisterSampleCallback(); err != nil && m.Log != nil {
		m.Log.WithError(err).WithField("subscription", m.Subscription.ID).WithField("item", m.ID).Warn("error unregistering sample callback")
	}

	m.Subscription.mu.Lock()
	defer m.Subscription.mu.Unlock()

	if m.Type == ChangeNotify {
		m.drainLocked()
	} else if m.Log != nil {
		m.Log.WithField("subscription", m.Subscription.ID).WithField("item", m.ID).Error("deleting non-change-notify item; event payload release is a no-op")
	}

	m.Subscription.removeItemLocked(m)
}

// drainLocked removes every notification in m's local queue from both
// queues, releasing its payload and decrementing the correct subscription
// counter. The caller must hold m.Subscription.mu.
func (m *MonitoredItem) drainLocked() {
	for e := m.queue.Front(); e != nil; {
		next := e.Next()
		n := e.Value.(*Notification)
		m.Subscription.removeGlobalLocked(n)
		e = next
	}
	m.queue.Init()
	m.currentQueueSize = 0
}
