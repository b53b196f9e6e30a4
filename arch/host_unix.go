//go:build linux || darwin
// +build linux darwin

package arch

import (
	"strings"

	"golang.org/x/sys/unix"
)

// hostUname reads the kernel's machine string via uname(2), mapping the
// handful of spellings uname(2) actually returns onto our registry names.
func hostUname() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", err
	}
	machine := charsToString(uts.Machine[:])
	switch strings.ToLower(machine) {
	case "x86_64", "amd64":
		return "amd64", nil
	case "i386", "i486", "i586", "i686":
		return "i386", nil
	case "aarch64", "arm64":
		return "aarch64", nil
	case "armv7l", "armv6l", "arm":
		return "arm", nil
	case "mips64":
		return "mips64", nil
	case "mips":
		return "mips", nil
	case "ppc64", "ppc64le":
		return "powerpc64", nil
	case "ppc", "powerpc":
		return "powerpc", nil
	case "s390x":
		return "s390", nil
	default:
		return "", nil
	}
}

func charsToString(b []byte) string {
	n := 0
	for n < len(b) && byte(b[n]) != 0 {
		n++
	}
	raw := make([]byte, n)
	for i := 0; i < n; i++ {
		raw[i] = byte(b[i])
	}
	return string(raw)
}
