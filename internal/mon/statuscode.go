package mon

import "github.com/gopcua/opcua/ua"

// Status-code bits the OPC-UA binary protocol reserves for monitored-item
// notifications. gopcua's ua.StatusCode carries the raw u32 value but does
// not special-case these bits, so they are declared here against the
// documented OPC-UA Part 4 status-code layout (the "type" field occupies
// bits 10-11, the "DataValue" type is 0b01; the overflow info-bit is bit 7
// of the info-bits byte).
const (
	statusInfoTypeDataValue ua.StatusCode = 0x00000400
	statusInfoBitsOverflow  ua.StatusCode = 0x00000080

	// overflowMask is OR'd into a DataValue's status to flag that a
	// notification was dropped from this item's queue since the last
	// delivered sample.
	overflowMask = statusInfoTypeDataValue | statusInfoBitsOverflow
)

// setOverflow ORs the overflow info-bits into status and marks hasStatus.
func setOverflow(dv *ua.DataValue) {
	dv.EncodingMask |= ua.DataValueStatusCode
	dv.Status = dv.Status | overflowMask
}

// clearOverflow removes the overflow info-bits from status, used by the
// maxQueueSize==1 special case in ensureQueueSpace.
func clearOverflow(dv *ua.DataValue) {
	dv.Status = dv.Status &^ overflowMask
}
