package machine

import "errors"

var (
	// ErrInvalidInstruction is returned when an Invalid instruction is executed.
	ErrInvalidInstruction = errors.New("invalid instruction")
	// ErrReadMismatch is returned when a Read instruction observes a value
	// other than the one it expects.
	ErrReadMismatch = errors.New("read value does not match the expected value")
	// ErrTimeLogRegression is returned when the time log would move backwards.
	ErrTimeLogRegression = errors.New("time log can only move forward")

	ErrNoStack        = errors.New("machine has no stack capability")
	ErrNoRegisters    = errors.New("machine has no register capability")
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackConfig    = errors.New("stack capability needs a positive maximum depth")
	ErrRegisterConfig = errors.New("register capability needs at least one register")
	ErrNoSuchRegister = errors.New("register index out of range")
)
