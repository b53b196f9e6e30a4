package fmtpwn

import (
	"bytes"
	"fmt"
)

// directiveBuffer wraps bytes.Buffer with explicit commit semantics:
// writing to it after Commit panics, so a caller that commits, reads Bytes
// or Len, and keeps writing afterward fails loudly instead of silently.
// Reading Bytes or Len alone does not freeze the buffer.
type directiveBuffer struct {
	buf       bytes.Buffer
	committed bool
	name      string
}

func newDirectiveBuffer(name string) *directiveBuffer {
	return &directiveBuffer{name: name}
}

func (b *directiveBuffer) WriteString(s string) {
	if b.committed {
		panic(fmt.Sprintf("directiveBuffer(%s): write after commit", b.name))
	}
	b.buf.WriteString(s)
}

func (b *directiveBuffer) WriteByte(c byte) {
	if b.committed {
		panic(fmt.Sprintf("directiveBuffer(%s): write after commit", b.name))
	}
	b.buf.WriteByte(c)
}

func (b *directiveBuffer) WriteRepeated(c byte, n int) {
	for i := 0; i < n; i++ {
		b.WriteByte(c)
	}
}

func (b *directiveBuffer) Len() int {
	return b.buf.Len()
}

func (b *directiveBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

// Commit freezes the buffer: further writes panic.
func (b *directiveBuffer) Commit() {
	b.committed = true
}
