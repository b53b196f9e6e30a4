package pattern

import (
	"fmt"
	"strings"
	"testing"

	"github.com/xyproto/fmtpwn/arch"
)

func TestCreateStaysWithinBufferSize(t *testing.T) {
	p := Create(64, 1)
	if len(p) > 64 {
		t.Fatalf("pattern exceeds buffer size: len=%d", len(p))
	}
	if !strings.HasPrefix(p, marker) {
		t.Fatalf("pattern missing marker prefix: %q", p)
	}
}

func TestCreateOffsetRoundTrip(t *testing.T) {
	amd64, err := arch.Lookup("amd64")
	if err != nil {
		t.Fatal(err)
	}

	bufferSize := 256
	startOffset := 6
	probe := Create(bufferSize, startOffset)

	// Simulate a victim: each "|%N$p" field is replaced by the word-sized
	// pointer rendering of the bytes that vararg slot would actually see —
	// here, the probe's own bytes read back starting at that slot's
	// byte offset, which is exactly what happens when the buffer overlaps
	// its own varargs region.
	fields := strings.Split(probe, "|")
	rendered := fields[0]
	raw := []byte(probe)
	w := amd64.WordBytes()
	for i, f := range fields[1:] {
		byteOff := i * w
		var word uint64
		for j := 0; j < w; j++ {
			idx := byteOff + j
			var b byte
			if idx < len(raw) {
				b = raw[idx]
			}
			word |= uint64(b) << uint(j*8)
		}
		_ = f
		rendered += fmt.Sprintf("|0x%x", word)
	}

	offset, padding, found, err := Offset(rendered, startOffset, amd64)
	if err != nil {
		t.Fatalf("Offset returned error: %v", err)
	}
	if !found {
		t.Fatalf("expected to find the buffer offset in %q", rendered)
	}
	if offset != startOffset {
		t.Errorf("expected offset %d, got %d", startOffset, offset)
	}
	if padding != 0 {
		t.Errorf("expected padding 0, got %d", padding)
	}
}

func TestOffsetNotFound(t *testing.T) {
	amd64, err := arch.Lookup("amd64")
	if err != nil {
		t.Fatal(err)
	}
	_, _, found, err := Offset("ABCDEFGH|0x1|0x2|0x3", 1, amd64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected not found for unrelated hex fields")
	}
}

func TestOffsetHandlesNilRendering(t *testing.T) {
	amd64, err := arch.Lookup("amd64")
	if err != nil {
		t.Fatal(err)
	}
	_, _, found, err := Offset("ABCDEFGH|(nil)|(nil)", 1, amd64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected not found")
	}
}
