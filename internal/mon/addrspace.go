package mon

import (
	"context"

	"github.com/gopcua/opcua/ua"
)

// ReadValueID names the (NodeId, AttributeId, IndexRange) triple a sample
// tick resolves through the Address-Space Reader.
type ReadValueID struct {
	NodeID      *ua.NodeID
	AttributeID ua.AttributeID
	IndexRange  string
}

// AddressSpaceReader is the external collaborator consumed from the
// Address-Space Reader (C6) per SPEC_FULL.md §6. It is the only
// potentially blocking call inside a sample tick and must not be
// re-entrant into the same item's sample path; the concrete implementation
// lives in internal/addrspace.
type AddressSpaceReader interface {
	Read(ctx context.Context, rvid ReadValueID, timestamps ua.TimestampsToReturn) *Value
}
