package mon

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gopcua/opcua/ua"
)

// suiteBlockingReader signals started once Read is entered and blocks
// until release is closed, standing in for a slow Address-Space Reader
// call so the spec below can reliably catch a tick in flight.
type suiteBlockingReader struct {
	payload int32
	started chan struct{}
	release chan struct{}
}

func (r *suiteBlockingReader) Read(_ context.Context, _ ReadValueID, _ ua.TimestampsToReturn) *Value {
	close(r.started)
	<-r.release
	now := time.Now()
	return &Value{Storage: StorageOwned, DV: dataValue(r.payload, ua.StatusCodeGood, now, now)}
}

var _ = Describe("MonitoredItem cancellation", func() {
	var (
		sub    *Subscription
		item   *MonitoredItem
		reader *suiteBlockingReader
	)

	BeforeEach(func() {
		sub = NewSubscription(1)
		item = NewMonitoredItem(1, sub)
		item.MaxQueueSize = 5
		reader = &suiteBlockingReader{payload: 7, started: make(chan struct{}), release: make(chan struct{})}
		item.Reader = reader
		sub.AddItem(item)
		item.callbackRegistered = true
	})

	When("a sample tick is in flight", func() {
		It("blocks Delete until the tick completes and leaves no orphaned notification (P8)", func() {
			sampleDone := make(chan struct{})
			go func() {
				item.Sample()
				close(sampleDone)
			}()
			Eventually(reader.started).Should(BeClosed())

			deleteDone := make(chan struct{})
			go func() {
				item.Delete()
				close(deleteDone)
			}()

			Consistently(deleteDone, 20*time.Millisecond).ShouldNot(BeClosed())

			close(reader.release)
			Eventually(sampleDone).Should(BeClosed())
			Eventually(deleteDone).Should(BeClosed())

			Expect(sub.Len()).To(Equal(0))
			Expect(sub.Item(item.ID)).To(BeNil())
		})
	})
})
