// Package publish provides a demo Publish Drainer, the external collaborator
// (C7) of SPEC_FULL.md §6 that consumes a Subscription's global
// notification queue. A real server would fold drained notifications into
// a PublishResponse PDU and promote them to "ready" only once a client ack
// lands; this drainer promotes immediately, matching the simplest
// compliant promotion policy the core's invariants allow.
package publish

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/basyskom-jvoe/open62541-go/internal/mon"
)

// Drainer periodically empties a Subscription's ready notifications,
// grounded on the fan-out shape of the teacher's SnapshotHandler/Observer
// pairing: an external consumer pulls from a queue on its own cadence
// rather than being pushed to synchronously by the sampler.
type Drainer struct {
	Subscription *mon.Subscription
	Interval     time.Duration
	Log          logrus.FieldLogger

	// Deliver is called for each drained notification's DataValue. It
	// must not retain the notification itself.
	Deliver func(n *mon.Notification)
}

// Run drains the subscription's global queue head-first until ctx is
// canceled. Every iteration first promotes all pending notifications to
// ready (the "publish boundary" SPEC_FULL.md §4.4 describes), then dequeues
// ready notifications from the head.
func (d *Drainer) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.drainOnce()
		}
	}
}

func (d *Drainer) drainOnce() {
	pending, _ := d.Subscription.Counts()
	d.Subscription.PromoteReady(pending)

	for {
		n := d.Subscription.Ready()
		if n == nil {
			return
		}
		if d.Deliver != nil {
			d.Deliver(n)
		}
		d.Subscription.Remove(n)
		if d.Log != nil {
			d.Log.WithField("subscription", d.Subscription.ID).WithField("item", n.Item.ID).Debug("drained notification")
		}
	}
}
