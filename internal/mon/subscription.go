package mon

import (
	"container/list"
	"sync"

	"github.com/sirupsen/logrus"
)

// Subscription (C4) owns a set of monitored items and the
// subscription-global, insertion-ordered notification queue threaded
// through their local queues. Per SPEC_FULL.md §5, a single mutex covers
// the global queue, every owned item's local queue/counters, and the item
// set itself — this is that mutex.
type Subscription struct {
	ID uint32

	Log logrus.FieldLogger

	mu      sync.Mutex
	items   map[uint32]*MonitoredItem
	global  list.List // of *Notification, insertion order, head = oldest
	pending uint32
	ready   uint32
}

// NewSubscription returns an empty, ready-to-use Subscription.
func NewSubscription(id uint32) *Subscription {
	return &Subscription{
		ID:    id,
		items: make(map[uint32]*MonitoredItem),
	}
}

// AddItem registers a monitored item with the subscription.
func (s *Subscription) AddItem(item *MonitoredItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

// Item returns the monitored item with the given id, or nil.
func (s *Subscription) Item(id uint32) *MonitoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

// Items returns a snapshot slice of the subscription's current monitored
// items.
func (s *Subscription) Items() []*MonitoredItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*MonitoredItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out
}

// Counts returns the current pending and ready notification counts (I4:
// pending+ready == length of the global queue).
func (s *Subscription) Counts() (pending, ready uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.ready
}

// Len returns the current length of the global notification queue.
func (s *Subscription) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.global.Len()
}

// removeItemLocked drops item from the subscription's item set. The
// caller must hold s.mu.
func (s *Subscription) removeItemLocked(item *MonitoredItem) {
	delete(s.items, item.ID)
}

// decrementCounterLocked implements the "pending first, else ready" rule
// used throughout SPEC_FULL.md §4.3/§4.2/§6: removal of any one
// notification from the global queue always decrements exactly one
// counter, preferring pending. The caller must hold s.mu.
func (s *Subscription) decrementCounterLocked() {
	if s.pending > 0 {
		s.pending--
		return
	}
	if s.ready > 0 {
		s.ready--
	}
}

// removeGlobalLocked removes n from both the global queue and its item's
// local queue, decrementing the appropriate counter and the item's
// currentQueueSize. The caller must hold s.mu.
func (s *Subscription) removeGlobalLocked(n *Notification) {
	if n.localElem != nil {
		n.Item.queue.Remove(n.localElem)
		n.Item.currentQueueSize--
		n.localElem = nil
	}
	if n.globalElem != nil {
		s.global.Remove(n.globalElem)
		n.globalElem = nil
		s.decrementCounterLocked()
	}
}

// PromoteReady moves up to n pending notifications into the ready bucket,
// the bookkeeping step SPEC_FULL.md §4.4 assigns to the (external) Publish
// Drainer at a publish boundary.
func (s *Subscription) PromoteReady(n uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.pending {
		n = s.pending
	}
	s.pending -= n
	s.ready += n
}

// Ready returns the oldest ready notification in the global queue without
// removing it, or nil if there is none. The Publish Drainer (C7) uses this
// together with Remove to consume the queue head-first (§6).
func (s *Subscription) Ready() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == 0 {
		return nil
	}
	if e := s.global.Front(); e != nil {
		return e.Value.(*Notification)
	}
	return nil
}

// Remove is the primitive exposed to the Publish Path (§6): it removes n
// from both the global queue and its item's local queue and decrements
// the appropriate counter (pending-first).
func (s *Subscription) Remove(n *Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeGlobalLocked(n)
}

// ensureQueueSpace implements the overflow policy of SPEC_FULL.md §4.3.
// newcomer, if non-nil, has already been appended to item's local queue
// (by sampleWithValue) but not yet inserted into the global queue. The
// caller must hold s.mu.
func (s *Subscription) ensureQueueSpace(item *MonitoredItem, newcomer *Notification) {
	inserted := false
	evictedAny := false

	for item.currentQueueSize > item.MaxQueueSize {
		evictedAny = true
		var victimElem *list.Element
		if item.DiscardOldest {
			victimElem = item.queue.Front()
		} else {
			// second-newest: predecessor of the tail.
			if tail := item.queue.Back(); tail != nil {
				victimElem = tail.Prev()
			}
		}
		if victimElem == nil {
			break
		}
		victim := victimElem.Value.(*Notification)

		// Step 2: remove victim from the local queue.
		item.queue.Remove(victimElem)
		victim.localElem = nil

		// Step 3: global-queue splice for the newcomer.
		usedAsSlotTaker := false
		if newcomer != nil && !inserted {
			if victim.globalElem != nil {
				if succ := victim.globalElem.Next(); succ != nil {
					newcomer.globalElem = s.global.InsertBefore(newcomer, succ)
				} else {
					newcomer.globalElem = s.global.PushBack(newcomer)
				}
			} else {
				newcomer.globalElem = s.global.PushBack(newcomer)
			}
			inserted = true
			usedAsSlotTaker = true
		}

		// Step 4: remove victim from the global queue.
		if victim.globalElem != nil {
			s.global.Remove(victim.globalElem)
			victim.globalElem = nil
		}
		if !usedAsSlotTaker {
			s.decrementCounterLocked()
		}
		// Open Question (SPEC_FULL.md §9): when the newcomer *was* used
		// as the slot-taker, the counters are deliberately left
		// untouched — the newcomer silently inherits whichever bucket
		// (pending or ready) the victim occupied. This is implemented
		// exactly as the source does it, not guessed around.

		// Step 5.
		item.currentQueueSize--
	}

	if newcomer != nil && !inserted {
		// No eviction happened: append to the global queue tail.
		newcomer.globalElem = s.global.PushBack(newcomer)
		s.pending++
		return
	}

	if evictedAny {
		s.applyOverflowMarker(item)
	}
}

// applyOverflowMarker implements the post-loop infobit rule of §4.3: with
// maxQueueSize==1, clear the overflow bit on the sole retained element;
// otherwise set it on the newest-side marker (head if DiscardOldest, else
// tail). The caller must hold s.mu.
func (s *Subscription) applyOverflowMarker(item *MonitoredItem) {
	if item.MaxQueueSize == 1 {
		if e := item.queue.Front(); e != nil {
			clearOverflow(e.Value.(*Notification).Value.DV)
		}
		return
	}

	var marker *list.Element
	if item.DiscardOldest {
		marker = item.queue.Front()
	} else {
		marker = item.queue.Back()
	}
	if marker != nil {
		setOverflow(marker.Value.(*Notification).Value.DV)
	}
}
