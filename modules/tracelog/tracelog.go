// Package tracelog keeps a tamper-evident audit log of a machine trace: an
// append-only Merkle Mountain Range whose leaves are Keccak-256 digests of
// trace records.
package tracelog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"MemoryConsistencyCircuit/modules/base"
	"MemoryConsistencyCircuit/modules/machine"

	"github.com/datatrails/go-datatrails-merklelog/mmr"
	"golang.org/x/crypto/sha3"
)

var (
	ErrNodeNotFound = errors.New("mmr node not found")
	ErrEmptyLog     = errors.New("audit log is empty")
)

// Log is an in-memory node store for an MMR. Nodes are addressed by their
// zero-based mmr index.
type Log struct {
	nodes  [][]byte
	leaves uint64
	hasher hash.Hash
}

func New() *Log {
	return &Log{hasher: sha3.NewLegacyKeccak256()}
}

// Get implements the node getter of the mmr package.
func (l *Log) Get(i uint64) ([]byte, error) {
	if i >= uint64(len(l.nodes)) {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, i)
	}
	return l.nodes[i], nil
}

// Append implements the node appender of the mmr package. It returns the
// size of the mmr after the append.
func (l *Log) Append(value []byte) (uint64, error) {
	l.nodes = append(l.nodes, value)
	return uint64(len(l.nodes)), nil
}

// Size is the number of mmr nodes, leaves and interior nodes alike.
func (l *Log) Size() uint64 {
	return uint64(len(l.nodes))
}

// Leaves is the number of records logged.
func (l *Log) Leaves() uint64 {
	return l.leaves
}

// AddLeaf appends an already hashed leaf.
func (l *Log) AddLeaf(leafHash []byte) error {
	if _, err := mmr.AddHashedLeaf(l, l.hasher, leafHash); err != nil {
		return err
	}
	l.leaves++
	return nil
}

// Root bags the current peaks into a single digest.
func (l *Log) Root() ([]byte, error) {
	if len(l.nodes) == 0 {
		return nil, ErrEmptyLog
	}
	return mmr.GetRoot(l.Size(), l, l.hasher)
}

// LeafHash is Keccak-256 over the record encoded as its big-endian time
// log, one kind byte, then the address and value bytes.
func LeafHash[K base.Base[K], V base.Base[V]](r machine.TraceRecord[K, V]) []byte {
	var prefix [9]byte
	binary.BigEndian.PutUint64(prefix[:8], r.TimeLog)
	prefix[8] = byte(r.Kind)

	h := sha3.NewLegacyKeccak256()
	h.Write(prefix[:])
	h.Write(r.Address.Bytes())
	h.Write(r.Value.Bytes())
	return h.Sum(nil)
}

// Add logs one trace record.
func Add[K base.Base[K], V base.Base[V]](l *Log, r machine.TraceRecord[K, V]) error {
	return l.AddLeaf(LeafHash(r))
}

// FromTrace logs records in order.
func FromTrace[K base.Base[K], V base.Base[V]](records []machine.TraceRecord[K, V]) (*Log, error) {
	l := New()
	for i, r := range records {
		if err := Add(l, r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return l, nil
}
