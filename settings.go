package fmtpwn

import (
	"fmt"

	"github.com/xyproto/fmtpwn/arch"
)

// PayloadSettings is the immutable per-payload constraint bundle: where the
// attacker buffer starts in the victim's varargs, how much padding it needs
// to reach a word boundary, which architecture it targets, which byte
// values must never appear in the output, and which byte fills padding.
type PayloadSettings struct {
	Offset         int
	Padding        int
	Arch           arch.Architecture
	ForbiddenBytes map[byte]bool
	PaddingByte    byte
}

// NewPayloadSettings validates and constructs a PayloadSettings. paddingByte
// is optional: pass nil to let the settings choose one by preference (0x00,
// then the highest byte not in forbidden).
func NewPayloadSettings(offset, padding int, architecture arch.Architecture, forbidden []byte, paddingByte *byte) (*PayloadSettings, error) {
	if offset <= 0 {
		return nil, fmt.Errorf("fmtpwn: offset must be positive, got %d", offset)
	}
	wordBytes := architecture.WordBytes()
	if padding < 0 || padding >= wordBytes {
		return nil, fmt.Errorf("fmtpwn: padding must satisfy 0 <= padding < %d, got %d", wordBytes, padding)
	}

	forbiddenSet := make(map[byte]bool, len(forbidden))
	for _, b := range forbidden {
		forbiddenSet[b] = true
	}

	chosen, err := choosePaddingByte(paddingByte, forbiddenSet)
	if err != nil {
		return nil, err
	}

	return &PayloadSettings{
		Offset:         offset,
		Padding:        padding,
		Arch:           architecture,
		ForbiddenBytes: forbiddenSet,
		PaddingByte:    chosen,
	}, nil
}

// choosePaddingByte implements the preference chain: caller override, then
// 0x00, then the highest byte value not in the forbidden set. If the
// override is itself forbidden, or no byte value is unforbidden, this is a
// constructor-time failure rather than silently emitting a forbidden byte.
func choosePaddingByte(override *byte, forbidden map[byte]bool) (byte, error) {
	if override != nil {
		if forbidden[*override] {
			return 0, fmt.Errorf("fmtpwn: requested padding byte 0x%02x is forbidden", *override)
		}
		return *override, nil
	}
	if !forbidden[0x00] {
		return 0x00, nil
	}
	for v := 0xFF; v >= 0; v-- {
		if !forbidden[byte(v)] {
			return byte(v), nil
		}
	}
	return 0, fmt.Errorf("fmtpwn: every byte value is forbidden, no padding byte exists")
}

// scanForbidden returns the first forbidden byte found in payload, or ok
// = false if none is present.
func scanForbidden(payload []byte, forbidden map[byte]bool) (b byte, ok bool) {
	for _, c := range payload {
		if forbidden[c] {
			return c, true
		}
	}
	return 0, false
}
