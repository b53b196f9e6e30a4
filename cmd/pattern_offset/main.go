// pattern_offset decodes a victim's rendered offset-discovery probe,
// reporting where the attacker buffer sits in the victim's varargs.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xyproto/fmtpwn"
	"github.com/xyproto/fmtpwn/arch"
	"github.com/xyproto/fmtpwn/pattern"
)

func main() {
	var startOffset = flag.Int("s", 1, "starting varargs offset used when the probe was created")
	var archName = flag.String("a", "", "target architecture (defaults to the host architecture)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: pattern_offset [BUFFER] [-s OFFSET] [-a ARCH]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// flag stops at the first positional argument; parse what follows it
	// again so options may also come after BUFFER.
	var args []string
	for rest := flag.Args(); len(rest) > 0; rest = flag.Args() {
		args = append(args, rest[0])
		flag.CommandLine.Parse(rest[1:])
	}

	a, err := resolveArch(*archName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	buffer, err := readBuffer(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pattern_offset:", err)
		os.Exit(2)
	}

	offset, padding, found, err := pattern.Offset(buffer, *startOffset, a)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pattern_offset:", err)
		os.Exit(1)
	}
	if !found {
		fmt.Println("Buffer not found, look forward (or check the architecture).")
		os.Exit(0)
	}
	if padding == 0 {
		fmt.Printf("Found buffer at offset %d\n", offset)
	} else {
		fmt.Printf("Found buffer at offset %d with a padding of %d bytes\n", offset, padding)
	}
}

func resolveArch(name string) (arch.Architecture, error) {
	if name == "" {
		a, err := arch.Detect()
		if err != nil {
			return arch.Architecture{}, fmt.Errorf("pattern_offset: could not detect host architecture: %w", err)
		}
		return a, nil
	}
	a, err := arch.Lookup(name)
	if err != nil {
		return arch.Architecture{}, fmtpwn.NewUnknownArchitectureError(name)
	}
	return a, nil
}

func readBuffer(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
