package container

import (
	"reflect"
	"strings"
)

// TraceEntry is one resolve call: the requested type and the implementation
// chosen for it.
type TraceEntry struct {
	Type        string
	Implemented string
}

func (e TraceEntry) String() string {
	return "(" + e.Type + ", " + e.Implemented + ")"
}

// Trace is the chain of resolve calls leading to the current one.
// The zero value is not used; a nil *Trace is the empty chain.
type Trace struct {
	entry  TraceEntry
	parent *Trace
	depth  int
}

// Add extends the chain with a new call and returns the new tip.
func (t *Trace) Add(requested, implemented reflect.Type) *Trace {
	return &Trace{
		entry:  TraceEntry{Type: typeName(requested), Implemented: typeName(implemented)},
		parent: t,
		depth:  t.Depth() + 1,
	}
}

// Depth returns the number of calls in the chain.
func (t *Trace) Depth() int {
	if t == nil {
		return 0
	}
	return t.depth
}

// Entries returns the chain from the outermost call to the tip.
func (t *Trace) Entries() []TraceEntry {
	out := make([]TraceEntry, t.Depth())
	for n, i := t, t.Depth()-1; n != nil; n, i = n.parent, i-1 {
		out[i] = n.entry
	}
	return out
}

// Cycle returns the looping segment of the chain: from the first entry whose
// implementation appears again up to and including that repetition. It
// returns nil when no implementation repeats.
func (t *Trace) Cycle() []TraceEntry {
	entries := t.Entries()
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Implemented == entries[i].Implemented {
				return entries[i : j+1]
			}
		}
	}
	return nil
}

func (t *Trace) String() string {
	return joinEntries(t.Entries())
}

func joinEntries(entries []TraceEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return strings.Join(parts, " -> ")
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
