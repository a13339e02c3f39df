package base

import "encoding/binary"

// U32 is a 32-bit word.
type U32 uint32

func (U32) Width() int { return 4 }

func (a U32) Add(b U32) U32 { return a + b }
func (a U32) Sub(b U32) U32 { return a - b }

func (a U32) Mod(b U32) U32 {
	if b == 0 {
		return 0
	}
	return a % b
}

func (a U32) Cmp(b U32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (a U32) IsZero() bool { return a == 0 }

func (a U32) Bytes() []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(a))
}

func (U32) SetBytes(buf []byte) U32 {
	return U32(binary.BigEndian.Uint32(fit(buf, 4)))
}

func (a U32) Uint64() uint64       { return uint64(a) }
func (U32) SetUint64(v uint64) U32 { return U32(v) }
func (U32) IsUint64() bool         { return true }

// U64 is a 64-bit word.
type U64 uint64

func (U64) Width() int { return 8 }

func (a U64) Add(b U64) U64 { return a + b }
func (a U64) Sub(b U64) U64 { return a - b }

func (a U64) Mod(b U64) U64 {
	if b == 0 {
		return 0
	}
	return a % b
}

func (a U64) Cmp(b U64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (a U64) IsZero() bool { return a == 0 }

func (a U64) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(a))
}

func (U64) SetBytes(buf []byte) U64 {
	return U64(binary.BigEndian.Uint64(fit(buf, 8)))
}

func (a U64) Uint64() uint64       { return uint64(a) }
func (U64) SetUint64(v uint64) U64 { return U64(v) }
func (U64) IsUint64() bool         { return true }
