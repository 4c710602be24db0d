package mon

import (
	"time"

	"github.com/gopcua/opcua/ua"
)

// Storage tags whether a Value's underlying *ua.DataValue is safe to
// retain by reference (Owned) or must be cloned before retention
// (Borrowed). gopcua has no notion of this distinction — a client library
// always owns what it decodes — so it is introduced here to carry the
// Address-Space Reader's storage discipline (see design note in
// SPEC_FULL.md §3) into the sampler.
type Storage int

const (
	// StorageOwned means the caller transfers ownership of the
	// *ua.DataValue to whoever receives it; it may be retained directly
	// ("moved") without copying.
	StorageOwned Storage = iota
	// StorageBorrowed means the caller may reuse or mutate the
	// *ua.DataValue after returning it; it must be deep-copied before
	// retention.
	StorageBorrowed
)

// Value pairs a DataValue with the storage discipline the Address-Space
// Reader promised for it.
type Value struct {
	DV      *ua.DataValue
	Storage Storage
}

// HasValue reports whether the payload bit is set and a Variant is present.
func (v *Value) HasValue() bool {
	return v.DV != nil && v.DV.EncodingMask&ua.DataValueValue != 0 && v.DV.Value != nil
}

// clone copies the DataValue and its Variant struct. The copy is one level
// deep: slices or pointers held inside the Variant (array payloads, array
// dimensions, pointer-typed values) are shared with the original, so only
// scalar payloads come out fully independent.
func clone(dv *ua.DataValue) *ua.DataValue {
	if dv == nil {
		return nil
	}
	out := *dv
	if dv.Value != nil {
		v := *dv.Value
		out.Value = &v
	}
	return &out
}

// Retain returns a *ua.DataValue safe for the caller to keep, cloning it
// first if the source storage was Borrowed. After Retain is called on an
// Owned value, the Value must not be used again by the original caller —
// ownership has moved.
func (v *Value) Retain() *ua.DataValue {
	if v.Storage == StorageBorrowed {
		return clone(v.DV)
	}
	return v.DV
}

// badStatusValue constructs a legitimate DataValue carrying a bad status
// code, for use when the Address-Space Reader cannot resolve a read. A bad
// status is a real, enqueuable sample per SPEC_FULL.md §7 — it is never
// turned into a Go error.
func badStatusValue(status ua.StatusCode, now time.Time) *Value {
	return &Value{
		Storage: StorageOwned,
		DV: &ua.DataValue{
			EncodingMask:    ua.DataValueStatusCode | ua.DataValueSourceTimestamp | ua.DataValueServerTimestamp,
			Status:          status,
			SourceTimestamp: now,
			ServerTimestamp: now,
		},
	}
}
