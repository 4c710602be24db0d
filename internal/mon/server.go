package mon

import (
	"sync"
	"time"

	"github.com/gopcua/opcua/ua"
	"github.com/sirupsen/logrus"

	"github.com/basyskom-jvoe/open62541-go/internal/notify"
)

// Server owns every Subscription in the process and exposes the
// management-API operations of SPEC_FULL.md §6 ("Exposed to management"):
// create/delete monitored item, and per-parameter setters. It is the
// object cmd/uamond wires a Scheduler, an AddressSpaceReader, and a logger
// into.
type Server struct {
	Scheduler Scheduler
	Reader    AddressSpaceReader
	Log       logrus.FieldLogger

	// Notifier, if set, is refreshed once per management-API mutation
	// (create/delete subscription or item, any parameter setter) — the
	// fan-out hook a passive watcher such as a debug dashboard observes
	// instead of polling the Server directly. A notify.HoldoffNotifier is
	// the expected concrete type here, so a burst of setter calls
	// coalesces into a single refresh.
	Notifier notify.Observer

	mu            sync.Mutex
	subscriptions map[uint32]*Subscription
	nextSub       uint32
	nextItem      uint32
}

// NewServer returns an empty Server. Scheduler and Reader may be set
// directly on the returned value before any subscription is created.
func NewServer(scheduler Scheduler, reader AddressSpaceReader, log logrus.FieldLogger) *Server {
	return &Server{
		Scheduler:     scheduler,
		Reader:        reader,
		Log:           log,
		subscriptions: make(map[uint32]*Subscription),
	}
}

// Subscriptions returns a snapshot of the subscription count, for
// passive watchers (e.g. the Notifier) that only need a gauge.
func (srv *Server) Subscriptions() int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return len(srv.subscriptions)
}

// notify refreshes srv.Notifier if one is set.
func (srv *Server) notify() {
	if srv.Notifier != nil {
		srv.Notifier.Refresh()
	}
}

// CreateSubscription allocates and registers a new, empty Subscription.
func (srv *Server) CreateSubscription() *Subscription {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.nextSub++
	sub := NewSubscription(srv.nextSub)
	sub.Log = srv.Log
	srv.subscriptions[sub.ID] = sub
	srv.notify()
	return sub
}

// DeleteSubscription deletes every monitored item owned by subscriptionID
// and removes the subscription itself.
func (srv *Server) DeleteSubscription(subscriptionID uint32) ua.StatusCode {
	srv.mu.Lock()
	sub, ok := srv.subscriptions[subscriptionID]
	if ok {
		delete(srv.subscriptions, subscriptionID)
	}
	srv.mu.Unlock()

	if !ok {
		return ua.StatusCodeBadSubscriptionIDInvalid
	}
	for _, item := range sub.Items() {
		item.Delete()
	}
	srv.notify()
	return ua.StatusCodeGood
}

// MonitoredItemParams carries the create-time parameters for a monitored
// item, per SPEC_FULL.md §6's management surface.
type MonitoredItemParams struct {
	NodeID             *ua.NodeID
	AttributeID        ua.AttributeID
	IndexRange         string
	TimestampsToReturn ua.TimestampsToReturn
	Trigger            ua.DataChangeTrigger
	MaxQueueSize       uint32
	DiscardOldest      bool
	SamplingInterval   time.Duration
	Type               ItemType
}

// CreateMonitoredItem creates a monitored item under subscriptionID,
// registers its sample callback, and returns its id and a status.
func (srv *Server) CreateMonitoredItem(subscriptionID uint32, params MonitoredItemParams) (uint32, ua.StatusCode) {
	srv.mu.Lock()
	sub, ok := srv.subscriptions[subscriptionID]
	if !ok {
		srv.mu.Unlock()
		return 0, ua.StatusCodeBadSubscriptionIDInvalid
	}
	srv.nextItem++
	id := srv.nextItem
	srv.mu.Unlock()

	item := NewMonitoredItem(id, sub)
	item.NodeID = params.NodeID
	item.AttributeID = params.AttributeID
	item.IndexRange = params.IndexRange
	item.Reader = srv.Reader
	item.Scheduler = srv.Scheduler
	item.Log = srv.Log

	if params.TimestampsToReturn != 0 {
		item.TimestampsToReturn = params.TimestampsToReturn
	}
	if params.Trigger != 0 {
		item.Trigger = params.Trigger
	}
	if params.MaxQueueSize > 0 {
		item.MaxQueueSize = params.MaxQueueSize
	}
	item.DiscardOldest = params.DiscardOldest
	if params.SamplingInterval > 0 {
		item.SamplingInterval = params.SamplingInterval
	}
	if params.Type != ChangeNotify {
		item.Type = params.Type
	}

	sub.AddItem(item)

	if err := item.RegisterSampleCallback(); err != nil {
		if srv.Log != nil {
			srv.Log.WithError(err).WithField("item", id).Warn("failed to register sample callback")
		}
		return id, ua.StatusCodeBadInternalError
	}

	srv.notify()
	return id, ua.StatusCodeGood
}

// DeleteMonitoredItem deletes a monitored item.
func (srv *Server) DeleteMonitoredItem(subscriptionID, itemID uint32) ua.StatusCode {
	srv.mu.Lock()
	sub, ok := srv.subscriptions[subscriptionID]
	srv.mu.Unlock()
	if !ok {
		return ua.StatusCodeBadSubscriptionIDInvalid
	}

	item := sub.Item(itemID)
	if item == nil {
		return ua.StatusCodeBadMonitoredItemIDInvalid
	}
	item.Delete()
	srv.notify()
	return ua.StatusCodeGood
}

// SetSamplingInterval re-registers the item's sample callback at a new
// interval.
func (srv *Server) SetSamplingInterval(subscriptionID, itemID uint32, interval time.Duration) ua.StatusCode {
	item := srv.lookupItem(subscriptionID, itemID)
	if item == nil {
		return ua.StatusCodeBadMonitoredItemIDInvalid
	}
	if err := item.UnregisterSampleCallback(); err != nil {
		return ua.StatusCodeBadInternalError
	}
	item.SamplingInterval = interval
	if err := item.RegisterSampleCallback(); err != nil {
		return ua.StatusCodeBadInternalError
	}
	srv.notify()
	return ua.StatusCodeGood
}

// SetQueueParameters updates an item's overflow-policy parameters.
func (srv *Server) SetQueueParameters(subscriptionID, itemID uint32, maxQueueSize uint32, discardOldest bool) ua.StatusCode {
	item := srv.lookupItem(subscriptionID, itemID)
	if item == nil {
		return ua.StatusCodeBadMonitoredItemIDInvalid
	}
	if maxQueueSize == 0 {
		maxQueueSize = 1
	}

	item.Subscription.mu.Lock()
	item.MaxQueueSize = maxQueueSize
	item.DiscardOldest = discardOldest
	item.Subscription.ensureQueueSpace(item, nil)
	item.Subscription.mu.Unlock()

	srv.notify()
	return ua.StatusCodeGood
}

// SetTrigger updates an item's change-detection trigger.
func (srv *Server) SetTrigger(subscriptionID, itemID uint32, trigger ua.DataChangeTrigger) ua.StatusCode {
	item := srv.lookupItem(subscriptionID, itemID)
	if item == nil {
		return ua.StatusCodeBadMonitoredItemIDInvalid
	}
	item.Subscription.mu.Lock()
	item.Trigger = trigger
	item.Subscription.mu.Unlock()
	srv.notify()
	return ua.StatusCodeGood
}

// SetTimestampsToReturn updates which timestamps an item's samples carry.
func (srv *Server) SetTimestampsToReturn(subscriptionID, itemID uint32, tsToReturn ua.TimestampsToReturn) ua.StatusCode {
	item := srv.lookupItem(subscriptionID, itemID)
	if item == nil {
		return ua.StatusCodeBadMonitoredItemIDInvalid
	}
	item.Subscription.mu.Lock()
	item.TimestampsToReturn = tsToReturn
	item.Subscription.mu.Unlock()
	srv.notify()
	return ua.StatusCodeGood
}

func (srv *Server) lookupItem(subscriptionID, itemID uint32) *MonitoredItem {
	srv.mu.Lock()
	sub, ok := srv.subscriptions[subscriptionID]
	srv.mu.Unlock()
	if !ok {
		return nil
	}
	return sub.Item(itemID)
}
