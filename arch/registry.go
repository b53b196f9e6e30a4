package arch

import (
	"fmt"
	"runtime"
)

// registry is the frozen table of recognized architectures, seeded once at
// init time and never mutated afterward.
var registry = map[string]Architecture{}

func reg(name string, bits int, endian Endian) {
	a, err := New(name, bits, endian)
	if err != nil {
		panic(err) // only possible if this table itself is wrong
	}
	registry[name] = a
}

func init() {
	reg("aarch64", 64, LittleEndian)
	reg("alpha", 64, LittleEndian)
	reg("avr", 8, LittleEndian)
	reg("amd64", 64, LittleEndian)
	reg("x86_64", 64, LittleEndian)
	reg("arm", 32, LittleEndian)
	reg("thumb", 32, LittleEndian)
	reg("cris", 32, LittleEndian)
	reg("i386", 32, LittleEndian)
	reg("x86_32", 32, LittleEndian)
	reg("ia64", 64, BigEndian)
	reg("m68k", 32, BigEndian)
	reg("mips", 32, LittleEndian)
	reg("mips64", 64, LittleEndian)
	reg("msp430", 16, LittleEndian)
	reg("powerpc", 32, BigEndian)
	reg("powerpc64", 64, BigEndian)
	reg("s390", 32, BigEndian)
	reg("sparc", 32, BigEndian)
	reg("sparc64", 64, BigEndian)
	reg("vax", 32, LittleEndian)
}

// Lookup resolves a canonical architecture name from the registry.
func Lookup(name string) (Architecture, error) {
	a, ok := registry[name]
	if !ok {
		return Architecture{}, fmt.Errorf("arch: unknown architecture %q", name)
	}
	return a, nil
}

// goarchToRegistry maps the Go runtime's own GOARCH values onto our
// registry's canonical names, where they differ.
var goarchToRegistry = map[string]string{
	"amd64":   "amd64",
	"386":     "i386",
	"arm64":   "aarch64",
	"arm":     "arm",
	"mips":    "mips",
	"mips64":  "mips64",
	"ppc64":   "powerpc64",
	"ppc64le": "powerpc64",
	"s390x":   "s390",
	"riscv64": "", // not in the registry: no format-string-relevant victims observed on this arch yet
}

// Detect reports the architecture of the host Go is running on. On Linux
// and Darwin it cross-checks runtime.GOARCH against the kernel's own
// reported machine string (see host_unix.go); elsewhere runtime.GOARCH is
// authoritative.
func Detect() (Architecture, error) {
	name, ok := goarchToRegistry[runtime.GOARCH]
	if !ok || name == "" {
		if uname, err := hostUname(); err == nil && uname != "" {
			if a, err := Lookup(uname); err == nil {
				return a, nil
			}
		}
		return Architecture{}, fmt.Errorf("arch: cannot map GOARCH %q to a known architecture", runtime.GOARCH)
	}
	a, err := Lookup(name)
	if err != nil {
		return Architecture{}, err
	}
	if uname, err := hostUname(); err == nil && uname != "" {
		if kernelArch, err := Lookup(uname); err == nil && kernelArch.Bits > a.Bits {
			// A 32-bit Go build can run under a 64-bit kernel; prefer the
			// kernel's reported word size, since that is the victim
			// process's real register width.
			return kernelArch, nil
		}
	}
	return a, nil
}
