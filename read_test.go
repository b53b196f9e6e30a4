package fmtpwn

import (
	"bytes"
	"testing"

	"github.com/xyproto/fmtpwn/arch"
)

// TestReadPayload32BitLittleEndian checks a read payload against a 32-bit
// little-endian target.
func TestReadPayload32BitLittleEndian(t *testing.T) {
	i386 := mustArch(t, "i386")
	settings, err := NewPayloadSettings(7, 0, i386, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := ReadPayload{Address: 0x0804A000}

	out, err := p.Generate(settings, 0)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(out)%4 != 0 {
		t.Errorf("expected length to be a multiple of 4, got %d", len(out))
	}
	want := []byte{0x00, 0xa0, 0x04, 0x08}
	got := out[len(out)-4:]
	if !bytes.Equal(got, want) {
		t.Errorf("expected trailing address bytes %x, got %x", want, got)
	}
}

// TestReadPayload64BitWithStartLen checks a read payload against a 64-bit
// target when some output has already been printed before this payload.
func TestReadPayload64BitWithStartLen(t *testing.T) {
	amd64 := mustArch(t, "amd64")
	settings, err := NewPayloadSettings(6, 0, amd64, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := ReadPayload{Address: 0x400600}
	startLen := 3

	out, err := p.Generate(settings, startLen)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	total := startLen + len(out)
	if (total-settings.Padding)%8 != 0 {
		t.Errorf("expected start_len+len(payload) to be padding+8k, got total=%d padding=%d", total, settings.Padding)
	}
	want := []byte{0x00, 0x06, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00}
	got := out[len(out)-8:]
	if !bytes.Equal(got, want) {
		t.Errorf("expected trailing address bytes %x, got %x", want, got)
	}
}

func TestReadPayloadRejectsForbiddenByte(t *testing.T) {
	i386 := mustArch(t, "i386")
	settings, err := NewPayloadSettings(7, 0, i386, []byte{0x00}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// The packed address 0x0804A000 contains a 0x00 byte, and the padding
	// byte is forced to 0xFF, but the address block's own zero byte
	// should still be caught by the final forbidden-byte scan.
	p := ReadPayload{Address: 0x0804A000}
	_, err = p.Generate(settings, 0)
	if err == nil {
		t.Fatal("expected a forbidden-byte error")
	}
	fmtErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fmtErr.Kind != ForbiddenByte {
		t.Errorf("expected ForbiddenByte, got %v", fmtErr.Kind)
	}
	if fmtErr.Byte != 0x00 {
		t.Errorf("expected offending byte 0x00, got 0x%02x", fmtErr.Byte)
	}
}

func TestReadPayloadDeterministic(t *testing.T) {
	i386 := mustArch(t, "i386")
	settings, err := NewPayloadSettings(7, 0, i386, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := ReadPayload{Address: arch.Address(0x0804A000)}
	a, err := p.Generate(settings, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Generate(settings, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("expected repeated Generate calls to be byte-identical")
	}
}
