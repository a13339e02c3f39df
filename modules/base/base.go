// Package base defines the fixed-width unsigned integers used for machine
// addresses and values.
//
// Every implementation wraps on overflow modulo 2^(8*Width()), the same way a
// machine register does, and serializes to exactly Width() bytes in big-endian
// order.
package base

// Base is a fixed-width unsigned integer. Methods take and return values so
// that an implementation can be used as a map or tree key.
type Base[T any] interface {
	comparable

	// Width is the number of bytes in the serialized form.
	Width() int

	Add(T) T
	Sub(T) T
	// Mod returns the remainder of the division by the argument; a zero
	// divisor yields zero.
	Mod(T) T
	Cmp(T) int
	IsZero() bool

	// Bytes returns the big-endian encoding, exactly Width() bytes long.
	Bytes() []byte
	// SetBytes decodes a big-endian buffer. Shorter buffers are left padded
	// with zeroes, longer ones keep their trailing Width() bytes.
	SetBytes([]byte) T

	// Uint64 truncates to the low 64 bits.
	Uint64() uint64
	SetUint64(uint64) T
	// IsUint64 reports whether Uint64 is lossless.
	IsUint64() bool
}

// Zero returns the zero value of T.
func Zero[T Base[T]]() T {
	var zero T
	return zero
}

// One returns the value one of T.
func One[T Base[T]]() T {
	return FromUint64[T](1)
}

// FromUint64 converts a native integer, wrapping when T is narrower.
func FromUint64[T Base[T]](v uint64) T {
	var zero T
	return zero.SetUint64(v)
}

// FromBytes decodes a big-endian buffer into a T.
func FromBytes[T Base[T]](buf []byte) T {
	var zero T
	return zero.SetBytes(buf)
}

// WidthOf returns the serialized width of T in bytes.
func WidthOf[T Base[T]]() int {
	var zero T
	return zero.Width()
}

// fit aligns buf to exactly width bytes following the SetBytes contract.
func fit(buf []byte, width int) []byte {
	if len(buf) == width {
		return buf
	}
	out := make([]byte, width)
	if len(buf) > width {
		copy(out, buf[len(buf)-width:])
	} else {
		copy(out[width-len(buf):], buf)
	}
	return out
}
