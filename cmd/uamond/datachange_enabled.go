//go:build datachange

// Copyright Project Contour Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"time"

	"github.com/gopcua/opcua/id"
	"github.com/gopcua/opcua/ua"

	"github.com/basyskom-jvoe/open62541-go/internal/addrspace"
	"github.com/basyskom-jvoe/open62541-go/internal/health"
	"github.com/basyskom-jvoe/open62541-go/internal/metrics"
	"github.com/basyskom-jvoe/open62541-go/internal/mon"
	"github.com/basyskom-jvoe/open62541-go/internal/notify"
	"github.com/basyskom-jvoe/open62541-go/internal/publish"
)

// wireMonitoring builds the demo address space, the mon.Server management
// API, one subscription with two monitored items, and a publish drainer,
// then blocks until ctx is canceled. It is compiled only when the
// "datachange" build tag is set — the compile-time toggle SPEC_FULL.md §6
// requires; see datachange_disabled.go for the elided stub.
func wireMonitoring(ctx context.Context, sctx *serveContext, m *metrics.Metrics, checker *health.Checker) error {
	space := addrspace.New()
	nodeID := ua.NewStringNodeID(1, "demo.counter")
	space.Write(nodeID, ua.AttributeIDValue, &ua.DataValue{
		EncodingMask: ua.DataValueValue | ua.DataValueStatusCode | ua.DataValueSourceTimestamp,
		Value:        ua.MustVariant(int32(0)),
		Status:       ua.StatusCodeGood,
	}, mon.StorageOwned)

	// A well-known Server/ServerStatus/CurrentTime node, addressed via the
	// id package's standard numeric identifiers rather than a demo string
	// node id, so at least one monitored item exercises the same address
	// space a real OPC-UA server would expose.
	serverTimeID := ua.NewNumericNodeID(0, id.Server_ServerStatus_CurrentTime)
	space.Write(serverTimeID, ua.AttributeIDValue, &ua.DataValue{
		EncodingMask:    ua.DataValueValue | ua.DataValueStatusCode | ua.DataValueSourceTimestamp,
		Value:           ua.MustVariant(time.Now().UTC()),
		Status:          ua.StatusCodeGood,
		SourceTimestamp: time.Now().UTC(),
	}, mon.StorageBorrowed)

	scheduler := mon.NewTimerScheduler()
	srv := mon.NewServer(scheduler, space, sctx.log)

	// Fan management-API mutations out to a debug log line, coalesced so a
	// burst of setter calls (e.g. many CreateMonitoredItem calls at
	// startup) produces one line instead of one per call.
	srv.Notifier = &notify.HoldoffNotifier{
		Observer: notify.ObserverFunc(func() {
			sctx.log.WithField("subscriptions", srv.Subscriptions()).Debug("management state changed")
		}),
		FieldLogger: sctx.log.WithField("context", "notify"),
	}

	sub := srv.CreateSubscription()
	itemID, status := srv.CreateMonitoredItem(sub.ID, mon.MonitoredItemParams{
		NodeID:             nodeID,
		AttributeID:        ua.AttributeIDValue,
		TimestampsToReturn: ua.TimestampsToReturnBoth,
		Trigger:            ua.DataChangeTriggerStatusValue,
		MaxQueueSize:       sctx.params.Defaults.MaxQueueSize,
		DiscardOldest:      sctx.params.Defaults.DiscardOldest,
		SamplingInterval:   sctx.params.SamplingInterval(),
	})
	if status != ua.StatusCodeGood {
		sctx.log.WithField("status", status).Warn("failed to create demo monitored item")
	} else {
		sctx.log.WithField("item", itemID).Info("created demo monitored item")
	}

	_, status = srv.CreateMonitoredItem(sub.ID, mon.MonitoredItemParams{
		NodeID:             serverTimeID,
		AttributeID:        ua.AttributeIDValue,
		TimestampsToReturn: ua.TimestampsToReturnBoth,
		Trigger:            ua.DataChangeTriggerStatusValueTimestamp,
		MaxQueueSize:       sctx.params.Defaults.MaxQueueSize,
		DiscardOldest:      sctx.params.Defaults.DiscardOldest,
		SamplingInterval:   sctx.params.SamplingInterval(),
	})
	if status != ua.StatusCodeGood {
		sctx.log.WithField("status", status).Warn("failed to create server-time monitored item")
	}

	drainer := &publish.Drainer{
		Subscription: sub,
		Interval:     sctx.params.PublishInterval(),
		Log:          sctx.log,
		Deliver: func(n *mon.Notification) {
			m.IncManagementOperation("publish", "good")
		},
	}

	checker.SetReady(true)
	defer checker.SetReady(false)

	return drainer.Run(ctx)
}
