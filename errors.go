// Package fmtpwn synthesizes printf-family format-string exploitation
// payloads: %s reads of a NUL-terminated string at an arbitrary address,
// and %n-family writes of arbitrary bytes to arbitrary addresses.
package fmtpwn

import "fmt"

// Kind classifies the way a payload failed to generate.
type Kind int

const (
	// ForbiddenByte means the payload would contain a byte the caller
	// declared forbidden.
	ForbiddenByte Kind = iota
	// EmptyWrite means WritePayload.Generate was called with no recorded
	// bytes.
	EmptyWrite
	// StartLengthTooLarge means start_len exceeds the smallest value a
	// store needs to reach; the output counter cannot run backwards.
	StartLengthTooLarge
	// UnknownArchitecture means a caller-supplied architecture name was
	// not present in the registry. Produced by CLI front ends, not the
	// core synthesizer.
	UnknownArchitecture
	// InternalInvariant means the synthesizer's own arithmetic broke down:
	// a computed padding went negative, the write-payload fixpoint did not
	// converge, or a read directive's varargs index outgrew its assumed
	// digit bound.
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case ForbiddenByte:
		return "forbidden byte"
	case EmptyWrite:
		return "empty write"
	case StartLengthTooLarge:
		return "start length too large"
	case UnknownArchitecture:
		return "unknown architecture"
	case InternalInvariant:
		return "internal invariant violated"
	default:
		return "unknown error"
	}
}

// Error is the single error type the package returns. Callers that need to
// branch on failure mode should switch on Kind rather than string-matching
// Error().
type Error struct {
	Kind    Kind
	Message string
	Byte    byte // set when Kind == ForbiddenByte
}

func (e *Error) Error() string {
	if e.Kind == ForbiddenByte {
		return fmt.Sprintf("%s: 0x%02x: %s", e.Kind, e.Byte, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func forbiddenByteErr(b byte, where string) *Error {
	return &Error{Kind: ForbiddenByte, Byte: b, Message: where}
}

func emptyWriteErr() *Error {
	return &Error{Kind: EmptyWrite, Message: "WritePayload.Generate called with no recorded bytes"}
}

func startLenTooLargeErr(startLen int, smallest uint64) *Error {
	return &Error{Kind: StartLengthTooLarge, Message: fmt.Sprintf("start_len %d exceeds smallest store value 0x%x", startLen, smallest)}
}

func internalInvariantErr(msg string) *Error {
	return &Error{Kind: InternalInvariant, Message: msg}
}

// NewUnknownArchitectureError wraps a CLI-level architecture-name lookup
// failure in the package's error type, so front ends can report it the
// same way as a synthesis failure.
func NewUnknownArchitectureError(name string) *Error {
	return &Error{Kind: UnknownArchitecture, Message: fmt.Sprintf("architecture %q is not in the registry", name)}
}
