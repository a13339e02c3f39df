package memory

import "errors"

var (
	// ErrZeroCellSize is returned when a memory is configured with a zero cell size.
	ErrZeroCellSize = errors.New("cell size must be positive")
	// ErrCellSizeNotDivisor is returned when the cell size does not divide the value width.
	ErrCellSizeNotDivisor = errors.New("cell size does not divide the value width")
	// ErrCellSizeMismatch is returned when cells would hold less than a full value.
	ErrCellSizeMismatch = errors.New("cell size differs from the value width")
	// ErrUnalignedCell is returned when a store key is not a multiple of the cell size.
	ErrUnalignedCell = errors.New("cell address is not aligned to the cell size")
	// ErrAddressOverflow is returned when an access would wrap past the top of the address space.
	ErrAddressOverflow = errors.New("access crosses the end of the address space")
)
