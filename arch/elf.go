package arch

import (
	"debug/elf"
	"fmt"
)

// machineToName maps debug/elf's e_machine constants onto our registry's
// canonical architecture names. Unlisted machines surface as an error from
// archFromELFHeader.
var machineToName = map[elf.Machine]string{
	elf.EM_X86_64:  "amd64",
	elf.EM_386:     "i386",
	elf.EM_ARM:     "arm",
	elf.EM_AARCH64: "aarch64",
	elf.EM_MIPS:    "mips",
	elf.EM_PPC:     "powerpc",
	elf.EM_PPC64:   "powerpc64",
	elf.EM_SPARC:   "sparc",
	elf.EM_SPARCV9: "sparc64",
	elf.EM_IA_64:   "ia64",
	elf.EM_S390:    "s390",
	elf.EM_68K:     "m68k",
	elf.EM_ALPHA:   "alpha",
	elf.EM_AVR:     "avr",
	elf.EM_MSP430:  "msp430",
}

// DetectFromELF reads an ELF file's header to select an Architecture. It is
// a thin wrapper over the standard library's debug/elf reader: the header's
// e_machine field picks the name (via machineToName), and EI_CLASS/EI_DATA
// set bit width and endianness directly. The registry itself is not
// consulted: the file's own header is trusted for width and byte order.
func DetectFromELF(path string) (Architecture, error) {
	f, err := elf.Open(path)
	if err != nil {
		return Architecture{}, fmt.Errorf("arch: opening %s: %w", path, err)
	}
	defer f.Close()

	a, err := archFromELFHeader(f.Machine, f.Class, f.Data)
	if err != nil {
		return Architecture{}, fmt.Errorf("arch: %s: %w", path, err)
	}
	return a, nil
}

// archFromELFHeader is the pure part of DetectFromELF, split out so it can
// be exercised with synthetic header values in tests that do not need a
// real ELF file on disk.
func archFromELFHeader(machine elf.Machine, class elf.Class, data elf.Data) (Architecture, error) {
	name, ok := machineToName[machine]
	if !ok {
		return Architecture{}, fmt.Errorf("unsupported ELF machine %s", machine)
	}

	bits := 32
	if class == elf.ELFCLASS64 {
		bits = 64
	}
	endian := LittleEndian
	if data == elf.ELFDATA2MSB {
		endian = BigEndian
	}

	return New(name, bits, endian)
}
