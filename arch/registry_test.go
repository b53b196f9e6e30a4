package arch

import "testing"

func TestLookupKnownArchitectures(t *testing.T) {
	names := []string{
		"aarch64", "amd64", "x86_64", "i386", "x86_32", "arm", "thumb",
		"mips", "mips64", "powerpc", "powerpc64", "sparc", "sparc64",
		"ia64", "alpha", "avr", "cris", "m68k", "msp430", "s390", "vax",
	}
	for _, name := range names {
		if _, err := Lookup(name); err != nil {
			t.Errorf("expected %q to be registered: %v", name, err)
		}
	}
}

func TestLookupUnknownArchitecture(t *testing.T) {
	if _, err := Lookup("not-a-real-arch"); err == nil {
		t.Fatal("expected an error for an unknown architecture name")
	}
}

func TestAmd64Is64BitLittleEndian(t *testing.T) {
	a, err := Lookup("amd64")
	if err != nil {
		t.Fatal(err)
	}
	if a.Bits != 64 || a.Endian != LittleEndian || a.WordBytes() != 8 {
		t.Errorf("unexpected amd64 descriptor: %+v", a)
	}
}

func TestSparcIsBigEndian(t *testing.T) {
	a, err := Lookup("sparc")
	if err != nil {
		t.Fatal(err)
	}
	if a.Endian != BigEndian {
		t.Errorf("expected sparc to be big endian, got %v", a.Endian)
	}
}
