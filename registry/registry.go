// Package registry holds the ordered set of clock slots shown by the widget.
//
// A Registry has a fixed number of slots created from its default
// timezones plus one "your location" slot that stays unresolved until
// SetUserLocation is called. Slots are never added or removed; only their
// timezone changes. All methods are safe for concurrent use: readers work on
// a copy of the slots taken under a read lock.
package registry

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/philtim/worldclock/clock"
)

// ErrIndexOutOfRange is returned for a slot index outside the fixed slots.
var ErrIndexOutOfRange = errors.New("slot index out of range")

// Slot is one display position.
type Slot struct {
	Index        int
	ZoneID       string
	UserLocation bool
	// Resolved is false only for a user-location slot that has not been detected yet.
	Resolved bool
}

// Entry pairs a slot with its snapshot for one instant. Err is set, and
// Snapshot is zero, when the slot's timezone could not be computed.
type Entry struct {
	Slot     Slot
	Snapshot clock.Snapshot
	Err      error
}

// Registry owns the fixed slots and the user-location slot.
type Registry struct {
	mu    sync.RWMutex
	slots []Slot
	user  Slot
}

// New creates one slot per default timezone, in order, plus an unresolved
// user-location slot.
func New(defaults []string) (*Registry, error) {
	slots := make([]Slot, 0, len(defaults))
	for i, zoneID := range defaults {
		if !clock.Valid(zoneID) {
			return nil, fmt.Errorf("default slot %d: %w: %q", i, clock.ErrUnknownTimezone, zoneID)
		}
		slots = append(slots, Slot{Index: i, ZoneID: zoneID, Resolved: true})
	}

	return &Registry{
		slots: slots,
		user:  Slot{Index: len(slots), UserLocation: true},
	}, nil
}

// Len returns the number of fixed slots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// Slots returns a copy of the fixed slots in display order.
func (r *Registry) Slots() []Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Slot, len(r.slots))
	copy(out, r.slots)
	return out
}

// UserLocation returns the user-location slot.
func (r *Registry) UserLocation() Slot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.user
}

// SetSlotTimezone replaces the timezone of fixed slot index and returns the
// updated slot. A bad index is reported before an unknown timezone; on
// error the registry is left unchanged.
func (r *Registry) SetSlotTimezone(index int, zoneID string) (Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.slots) {
		return Slot{}, fmt.Errorf("%w: %d (have %d slots)", ErrIndexOutOfRange, index, len(r.slots))
	}
	if !clock.Valid(zoneID) {
		return Slot{}, fmt.Errorf("slot %d: %w: %q", index, clock.ErrUnknownTimezone, zoneID)
	}
	r.slots[index].ZoneID = zoneID
	return r.slots[index], nil
}

// SetUserLocation resolves the user-location slot, overwriting any earlier
// detection.
func (r *Registry) SetUserLocation(zoneID string) (Slot, error) {
	if !clock.Valid(zoneID) {
		return Slot{}, fmt.Errorf("user location: %w: %q", clock.ErrUnknownTimezone, zoneID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.user.ZoneID = zoneID
	r.user.Resolved = true
	return r.user, nil
}

// SnapshotAll yields one entry per fixed slot, then the user-location slot
// if it is resolved. Every entry is computed against the same instant at.
// The slots are copied when iteration starts, so concurrent updates never
// produce a torn read; each iteration recomputes from scratch.
func (r *Registry) SnapshotAll(at time.Time) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		r.mu.RLock()
		slots := make([]Slot, len(r.slots), len(r.slots)+1)
		copy(slots, r.slots)
		if r.user.Resolved {
			slots = append(slots, r.user)
		}
		r.mu.RUnlock()

		for _, slot := range slots {
			snap, err := clock.Compute(slot.ZoneID, at)
			if !yield(Entry{Slot: slot, Snapshot: snap, Err: err}) {
				return
			}
		}
	}
}
