// Package facts rotates through timezone trivia shown under the clocks.
package facts

import "sync"

var all = []string{
	"Nepal's offset is UTC+05:45, one of the few zones on a quarter hour.",
	"China spans five geographical time zones but uses a single one.",
	"France has more time zones than any other country, thanks to its overseas territories.",
	"Kiribati moved across the date line in 1995 so the whole country shares one calendar day.",
	"Newfoundland runs half an hour ahead of Atlantic time at UTC-03:30.",
	"Arizona mostly ignores daylight saving time, except the Navajo Nation.",
	"The Chatham Islands keep a UTC+12:45 offset in winter.",
	"Railways pushed standard time zones in the 19th century to fix timetables.",
	"India runs the whole country on a single UTC+05:30 zone.",
	"Antarctic research stations usually keep the time of their supply base.",
}

// All returns a copy of every fact in rotation order.
func All() []string {
	out := make([]string, len(all))
	copy(out, all)
	return out
}

// Rotator cycles through a list of facts. It is safe for concurrent use.
type Rotator struct {
	mu    sync.Mutex
	facts []string
	pos   int
}

// NewRotator returns a Rotator over facts starting at offset start, or
// over the built-in list when facts is empty.
func NewRotator(facts []string, start int) *Rotator {
	if len(facts) == 0 {
		facts = All()
	}
	pos := start % len(facts)
	if pos < 0 {
		pos += len(facts)
	}
	return &Rotator{facts: facts, pos: pos}
}

// Current returns the fact on display.
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.facts[r.pos]
}

// Next advances to the following fact, wrapping around, and returns it.
func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = (r.pos + 1) % len(r.facts)
	return r.facts[r.pos]
}
