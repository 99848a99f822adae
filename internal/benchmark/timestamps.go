package benchmark

import "time"

// Mark names an instant recorded during a run.
type Mark string

const (
	MarkCacheClearStart   Mark = "cache_clear_start"
	MarkNetworkRegistered Mark = "network_registered"
	MarkContextActivated  Mark = "context_activated"
	MarkSessionOnline     Mark = "session_online"
)

type Timestamp struct {
	Mark Mark
	At   time.Time
}

// Timestamps is append-only; the first record of a mark wins on lookup.
type Timestamps struct {
	list []Timestamp
}

func (t *Timestamps) Record(m Mark, at time.Time) {
	t.list = append(t.list, Timestamp{Mark: m, At: at})
}

func (t *Timestamps) Get(m Mark) (time.Time, bool) {
	for _, ts := range t.list {
		if ts.Mark == m {
			return ts.At, true
		}
	}
	return time.Time{}, false
}

// All returns the records in the order they were made.
func (t *Timestamps) All() []Timestamp {
	return append([]Timestamp(nil), t.list...)
}

// Between returns to minus from when both were recorded.
func (t *Timestamps) Between(from, to Mark) (time.Duration, bool) {
	a, ok := t.Get(from)
	if !ok {
		return 0, false
	}
	b, ok := t.Get(to)
	if !ok {
		return 0, false
	}
	return b.Sub(a), true
}
