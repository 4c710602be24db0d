package addrspace

import (
	"context"
	"testing"
	"time"

	"github.com/gopcua/opcua/ua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basyskom-jvoe/open62541-go/internal/mon"
)

func TestReadMissingNodeReturnsBadStatus(t *testing.T) {
	space := New()

	v := space.Read(context.Background(), mon.ReadValueID{
		NodeID:      ua.NewStringNodeID(1, "missing"),
		AttributeID: ua.AttributeIDValue,
	}, ua.TimestampsToReturnSource)

	require.NotNil(t, v)
	assert.Equal(t, ua.StatusCodeBadNodeIDUnknown, v.DV.Status)
	assert.False(t, v.HasValue())
}

func TestWriteThenReadOwned(t *testing.T) {
	space := New()
	nodeID := ua.NewStringNodeID(1, "demo.counter")
	dv := &ua.DataValue{
		EncodingMask: ua.DataValueValue | ua.DataValueStatusCode,
		Value:        ua.MustVariant(int32(7)),
		Status:       ua.StatusCodeGood,
	}
	space.Write(nodeID, ua.AttributeIDValue, dv, mon.StorageOwned)

	v := space.Read(context.Background(), mon.ReadValueID{NodeID: nodeID, AttributeID: ua.AttributeIDValue}, ua.TimestampsToReturnSource)

	require.NotNil(t, v)
	assert.Equal(t, mon.StorageOwned, v.Storage)
	assert.Equal(t, int32(7), v.DV.Value.Value().(int32))
}

func TestWriteThenReadBorrowedClones(t *testing.T) {
	space := New()
	nodeID := ua.NewStringNodeID(1, "server.time")
	now := time.Now()
	dv := &ua.DataValue{
		EncodingMask:    ua.DataValueValue | ua.DataValueStatusCode | ua.DataValueSourceTimestamp,
		Value:           ua.MustVariant(now),
		Status:          ua.StatusCodeGood,
		SourceTimestamp: now,
	}
	space.Write(nodeID, ua.AttributeIDValue, dv, mon.StorageBorrowed)

	v := space.Read(context.Background(), mon.ReadValueID{NodeID: nodeID, AttributeID: ua.AttributeIDValue}, ua.TimestampsToReturnSource)

	require.NotNil(t, v)
	assert.Equal(t, mon.StorageBorrowed, v.Storage)
	assert.NotSame(t, dv, v.DV, "a Borrowed cell must be cloned on read, not aliased")
}
