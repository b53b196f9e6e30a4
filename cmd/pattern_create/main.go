// pattern_create writes an offset-discovery probe to stdout.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/xyproto/fmtpwn/pattern"
)

func main() {
	var startOffset = flag.Int("s", 1, "starting varargs offset")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: pattern_create BUF_SIZE [-s OFFSET]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// flag stops at the first positional argument; parse what follows it
	// again so options may also come after BUF_SIZE.
	var args []string
	for rest := flag.Args(); len(rest) > 0; rest = flag.Args() {
		args = append(args, rest[0])
		flag.CommandLine.Parse(rest[1:])
	}
	if len(args) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	bufSize, err := strconv.Atoi(args[0])
	if err != nil || bufSize <= 0 {
		fmt.Fprintf(os.Stderr, "pattern_create: BUF_SIZE must be a positive integer, got %q\n", args[0])
		os.Exit(2)
	}

	fmt.Print(pattern.Create(bufSize, *startOffset))
}
