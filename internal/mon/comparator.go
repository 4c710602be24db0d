package mon

import "github.com/gopcua/opcua/ua"

// maxStackEncoding mirrors open62541's UA_VALUENCODING_MAXSTACK (512
// bytes). Nothing consults it: ua.Encode always returns a freshly
// allocated []byte (Go cannot encode into a caller-supplied stack buffer
// the way C can), and sampleWithValue copies every accepted snapshot into
// lastSampledValue whatever its size.
const maxStackEncoding = 512

// maskForTrigger returns a copy of dv with exactly the encoding-mask bits
// a comparison under trigger should see, per SPEC_FULL.md §4.1 step 1.
// The caller's DataValue is never mutated.
func maskForTrigger(dv *ua.DataValue, trigger ua.DataChangeTrigger) *ua.DataValue {
	masked := *dv

	if trigger == ua.DataChangeTriggerStatus {
		masked.EncodingMask &^= ua.DataValueValue
	}
	masked.EncodingMask &^= ua.DataValueServerTimestamp | ua.DataValueServerPicoseconds

	if trigger < ua.DataChangeTriggerStatusValueTimestamp {
		masked.EncodingMask &^= ua.DataValueSourceTimestamp | ua.DataValueSourcePicoseconds
	}

	return &masked
}

// detectValueChange implements the Encoded-Value Comparator (C1): it
// encodes dv under the trigger's filter mask and compares the result
// byte-exact against prev. It never mutates dv, and any encoding failure
// or zero-size encoding is treated conservatively as "unchanged" per
// SPEC_FULL.md §7.
func detectValueChange(dv *ua.DataValue, trigger ua.DataChangeTrigger, prev []byte) (changed bool, snapshot []byte) {
	masked := maskForTrigger(dv, trigger)

	encoded, err := ua.Encode(masked)
	if err != nil || len(encoded) == 0 {
		return false, prev
	}

	if len(prev) == 0 {
		return true, encoded
	}
	if len(encoded) != len(prev) {
		return true, encoded
	}
	for i := range encoded {
		if encoded[i] != prev[i] {
			return true, encoded
		}
	}
	return false, prev
}
