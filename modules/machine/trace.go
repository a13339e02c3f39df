package machine

import (
	"slices"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/memory"
)

// Kind is the kind of a traced memory instruction.
type Kind = memory.AccessKind

const (
	KindRead  = memory.AccessRead
	KindWrite = memory.AccessWrite
)

// TraceRecord is one executed memory instruction. Records are stamped with
// the time log of the instruction that produced them and never change.
type TraceRecord[K base.Base[K], V base.Base[V]] struct {
	TimeLog uint64
	Address K
	Kind    Kind
	Value   V
}

// Trace is an append-only list of records kept in time order.
type Trace[K base.Base[K], V base.Base[V]] struct {
	records []TraceRecord[K, V]
}

func (t *Trace[K, V]) append(r TraceRecord[K, V]) {
	t.records = append(t.records, r)
}

// Len is the number of records.
func (t *Trace[K, V]) Len() int {
	return len(t.records)
}

// TimeOrdered returns a copy of the records in execution order.
func (t *Trace[K, V]) TimeOrdered() []TraceRecord[K, V] {
	return slices.Clone(t.records)
}

// ByAddress returns a copy of the records sorted by address; records on the
// same address keep their execution order.
func (t *Trace[K, V]) ByAddress() []TraceRecord[K, V] {
	out := slices.Clone(t.records)
	slices.SortStableFunc(out, func(a, b TraceRecord[K, V]) int {
		return a.Address.Cmp(b.Address)
	})
	return out
}
