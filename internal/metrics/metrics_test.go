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

package metrics

import (
	"reflect"
	"testing"

	io_prometheus_client "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

func gather(t *testing.T, r *prometheus.Registry, name string) []*io_prometheus_client.Metric {
	t.Helper()

	gatherers := prometheus.Gatherers{r, prometheus.DefaultGatherer}
	families, err := gatherers.Gather()
	if err != nil {
		t.Fatal(err)
	}

	for _, mf := range families {
		if mf.GetName() == name {
			return mf.Metric
		}
	}
	return nil
}

func strp(s string) *string   { return &s }
func floatp(f float64) *float64 { return &f }

func TestSetSubscriptionCount(t *testing.T) {
	r := prometheus.NewRegistry()
	m := NewMetrics(r)
	m.SetSubscriptionCount(3)

	got := gather(t, r, SubscriptionGauge)
	want := []*io_prometheus_client.Metric{
		{Gauge: &io_prometheus_client.Gauge{Value: floatp(3)}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("subscription gauge: want %v, got %v", want, got)
	}
}

func TestSetMonitoredItemCount(t *testing.T) {
	r := prometheus.NewRegistry()
	m := NewMetrics(r)
	m.SetMonitoredItemCount("sub-1", 5)

	got := gather(t, r, MonitoredItemGauge)
	want := []*io_prometheus_client.Metric{
		{
			Label: []*io_prometheus_client.LabelPair{
				{Name: strp("subscription"), Value: strp("sub-1")},
			},
			Gauge: &io_prometheus_client.Gauge{Value: floatp(5)},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("monitored item gauge: want %v, got %v", want, got)
	}
}

func TestNotificationCounters(t *testing.T) {
	r := prometheus.NewRegistry()
	m := NewMetrics(r)
	m.IncNotificationsEnqueued("sub-1", "item-1")
	m.IncNotificationsEnqueued("sub-1", "item-1")
	m.IncNotificationsEvicted("sub-1", "item-1")

	enq := gather(t, r, NotificationsEnqueued)
	if len(enq) != 1 || enq[0].GetCounter().GetValue() != 2 {
		t.Fatalf("enqueued counter: got %v", enq)
	}

	evt := gather(t, r, NotificationsEvicted)
	if len(evt) != 1 || evt[0].GetCounter().GetValue() != 1 {
		t.Fatalf("evicted counter: got %v", evt)
	}
}

func TestSamplingCounters(t *testing.T) {
	r := prometheus.NewRegistry()
	m := NewMetrics(r)
	m.IncSamplesTaken("sub-1", "item-1")
	m.IncSampleErrors("sub-1", "item-1")

	samples := gather(t, r, SamplesTaken)
	if len(samples) != 1 || samples[0].GetCounter().GetValue() != 1 {
		t.Fatalf("samples taken counter: got %v", samples)
	}

	errs := gather(t, r, SampleErrors)
	if len(errs) != 1 || errs[0].GetCounter().GetValue() != 1 {
		t.Fatalf("sample errors counter: got %v", errs)
	}
}

func TestManagementOperationCounter(t *testing.T) {
	r := prometheus.NewRegistry()
	m := NewMetrics(r)
	m.IncManagementOperation("create_monitored_item", "good")

	got := gather(t, r, managementOperations)
	if len(got) != 1 || got[0].GetCounter().GetValue() != 1 {
		t.Fatalf("management operation counter: got %v", got)
	}
}

func TestSamplingTimerObservesDuration(t *testing.T) {
	r := prometheus.NewRegistry()
	m := NewMetrics(r)
	timer := m.NewSamplingTimer()
	timer.ObserveDuration()

	got := gather(t, r, samplingDurationSummary)
	if len(got) != 1 || got[0].GetSummary().GetSampleCount() != 1 {
		t.Fatalf("sampling duration summary: got %v", got)
	}
}
