package mon

import (
	"testing"
	"time"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed samples item with a sequence of distinct values, each guaranteed to
// compare as "changed" because its payload differs from the last. It
// mimics the "point of no return" half of MonitoredItem.Sample without
// going through the scheduler or an AddressSpaceReader.
func feed(t *testing.T, item *MonitoredItem, payloads ...int32) {
	t.Helper()
	now := time.Now()
	for _, p := range payloads {
		v := &Value{
			Storage: StorageOwned,
			DV:      dataValue(p, ua.StatusCodeGood, now, now),
		}
		item.Subscription.mu.Lock()
		changed := item.sampleWithValue(v)
		item.Subscription.mu.Unlock()
		require.True(t, changed, "payload %d expected to register as a change", p)
	}
}

func localQueueValues(item *MonitoredItem) []int32 {
	var out []int32
	for e := item.queue.Front(); e != nil; e = e.Next() {
		n := e.Value.(*Notification)
		out = append(out, n.Value.DV.Value.Value().(int32))
	}
	return out
}

func hasOverflow(n *Notification) bool {
	return n.Value.DV.Status&statusInfoBitsOverflow != 0
}

func newTestSubscriptionItem(maxQueue uint32, discardOldest bool) (*Subscription, *MonitoredItem) {
	sub := NewSubscription(1)
	item := NewMonitoredItem(1, sub)
	item.MaxQueueSize = maxQueue
	item.DiscardOldest = discardOldest
	sub.AddItem(item)
	return sub, item
}

// Scenario 1: maxQueueSize=3, discardOldest=true, feed v1..v5.
func TestScenarioDiscardOldest(t *testing.T) {
	sub, item := newTestSubscriptionItem(3, true)
	feed(t, item, 1, 2, 3, 4, 5)

	assert.Equal(t, []int32{3, 4, 5}, localQueueValues(item))
	assert.EqualValues(t, 3, item.currentQueueSize)
	assert.LessOrEqual(t, item.currentQueueSize, item.MaxQueueSize) // P1

	front := item.queue.Front().Value.(*Notification)
	assert.True(t, hasOverflow(front), "v3 (head) must carry the overflow bit")

	// P2: every surviving local-queue notification appears exactly once
	// in the global queue (the exact global order of this item's own
	// survivors after repeated splicing is not asserted here — see DESIGN.md's
	// note on the splice-in-place rule's within-item ordering quirk).
	assert.Equal(t, 3, sub.global.Len())
	inGlobal := make(map[*Notification]bool)
	for e := sub.global.Front(); e != nil; e = e.Next() {
		inGlobal[e.Value.(*Notification)] = true
	}
	for e := item.queue.Front(); e != nil; e = e.Next() {
		assert.True(t, inGlobal[e.Value.(*Notification)], "local-queue survivor must appear in the global queue")
	}
}

// Scenario 2: same feed with discardOldest=false.
func TestScenarioDiscardSecondNewest(t *testing.T) {
	_, item := newTestSubscriptionItem(3, false)
	feed(t, item, 1, 2, 3, 4, 5)

	assert.Equal(t, []int32{1, 2, 5}, localQueueValues(item))

	tail := item.queue.Back().Value.(*Notification)
	assert.True(t, hasOverflow(tail), "v5 (tail) must carry the overflow bit under discardOldest=false")
}

// Scenario 3: STATUS trigger, payload-only changes produce zero notifications.
// The first sample always fires (there is no previous snapshot to compare
// against), so it is taken as the baseline before the counted stream.
func TestScenarioStatusTriggerZeroNotifications(t *testing.T) {
	sub, item := newTestSubscriptionItem(5, true)
	item.Trigger = ua.DataChangeTriggerStatus
	feed(t, item, 0)

	now := time.Now()
	var fired int
	for _, p := range []int32{1, 2, 3, 4} {
		v := &Value{Storage: StorageOwned, DV: dataValue(p, ua.StatusCodeGood, now, now)}
		item.Subscription.mu.Lock()
		if item.sampleWithValue(v) {
			fired++
		}
		item.Subscription.mu.Unlock()
	}

	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, sub.global.Len(), "only the baseline sample is queued")
}

// Scenario 4: maxQueueSize=1, discardOldest=true, two samples: no overflow bit.
func TestScenarioMaxQueueSizeOneNoOverflowBit(t *testing.T) {
	_, item := newTestSubscriptionItem(1, true)
	feed(t, item, 1, 2)

	assert.Equal(t, []int32{2}, localQueueValues(item))
	last := item.queue.Front().Value.(*Notification)
	assert.False(t, hasOverflow(last), "maxQueueSize==1 must clear the overflow bit")
}

// Scenario 5: two items on one subscription, interleaved ticks, must
// preserve global cross-item insertion order.
func TestScenarioConcurrentTwoItemInterleaving(t *testing.T) {
	sub := NewSubscription(1)
	a := NewMonitoredItem(1, sub)
	a.MaxQueueSize = 10
	b := NewMonitoredItem(2, sub)
	b.MaxQueueSize = 10
	sub.AddItem(a)
	sub.AddItem(b)

	feed(t, a, 100) // A1
	feed(t, b, 200) // B1
	feed(t, a, 101) // A2
	feed(t, b, 201) // B2

	var order []int32
	for e := sub.global.Front(); e != nil; e = e.Next() {
		order = append(order, e.Value.(*Notification).Value.DV.Value.Value().(int32))
	}
	assert.Equal(t, []int32{100, 200, 101, 201}, order)
}

// Scenario 6: deleting an item with 2 queued notifications shrinks the
// global queue by 2 and decrements pending correctly.
func TestScenarioDeleteDrainsGlobalQueue(t *testing.T) {
	sub, item := newTestSubscriptionItem(5, true)
	feed(t, item, 1, 2)

	pending, ready := sub.Counts()
	require.EqualValues(t, 2, pending)
	require.EqualValues(t, 0, ready)
	require.Equal(t, 2, sub.Len())

	item.Delete()

	pending, ready = sub.Counts()
	assert.EqualValues(t, 0, pending)
	assert.EqualValues(t, 0, ready)
	assert.Equal(t, 0, sub.Len())
	assert.Nil(t, sub.Item(item.ID))
}

// P3: pending+ready always equals the global queue length, across a mixed
// promote/evict/delete sequence.
func TestCounterSumInvariant(t *testing.T) {
	sub, item := newTestSubscriptionItem(3, true)
	feed(t, item, 1, 2, 3, 4)

	pending, ready := sub.Counts()
	assert.EqualValues(t, pending+ready, sub.Len())

	sub.PromoteReady(1)
	pending, ready = sub.Counts()
	assert.EqualValues(t, pending+ready, sub.Len())

	n := sub.Ready()
	require.NotNil(t, n)
	sub.Remove(n)
	pending, ready = sub.Counts()
	assert.EqualValues(t, pending+ready, sub.Len())
}

// P7: with maxQueueSize > 1, exactly one element in the local queue
// carries the overflow bit after eviction.
func TestOverflowMarkerExactlyOne(t *testing.T) {
	_, item := newTestSubscriptionItem(3, true)
	feed(t, item, 1, 2, 3, 4, 5)

	var marked int
	for e := item.queue.Front(); e != nil; e = e.Next() {
		if hasOverflow(e.Value.(*Notification)) {
			marked++
		}
	}
	assert.Equal(t, 1, marked)
}

// SetQueueParameters (shrinking maxQueueSize with no newcomer) must still
// evict and still apply the overflow marker, exercising ensureQueueSpace's
// newcomer==nil path.
func TestEnsureQueueSpaceShrinkWithoutNewcomer(t *testing.T) {
	_, item := newTestSubscriptionItem(5, true)
	feed(t, item, 1, 2, 3, 4, 5)
	require.Equal(t, []int32{1, 2, 3, 4, 5}, localQueueValues(item))

	item.Subscription.mu.Lock()
	item.MaxQueueSize = 2
	item.Subscription.ensureQueueSpace(item, nil)
	item.Subscription.mu.Unlock()

	assert.Equal(t, []int32{4, 5}, localQueueValues(item))
	front := item.queue.Front().Value.(*Notification)
	assert.True(t, hasOverflow(front))
}
