package mon

import "container/list"

// Notification (C2) links one sampled Value to its owning MonitoredItem
// and to both the item's local FIFO and the subscription's global FIFO.
// It is owned exclusively by Item: removing it from both queues and
// dropping localElem/globalElem is equivalent to freeing it (I6) — Go's
// GC reclaims the struct once nothing still references it.
type Notification struct {
	Value *Value
	Item  *MonitoredItem

	localElem  *list.Element
	globalElem *list.Element
}
