// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package endian normalizes 32-bit words between the host's native byte order
// and the little-endian wire order used by recording files.
//
// The host order is determined once, when the package is initialized, by
// storing a known value in native memory and inspecting its byte layout. A
// Normalizer can also be built for an arbitrary binary.ByteOrder, which allows
// big-endian hosts to be simulated on little-endian hardware and vice versa.
package endian

import (
	"encoding/binary"
	"unsafe"

	"github.com/pkg/errors"
)

// word is the native word that detection is performed against.
type word = uint32

// Detection inspects exactly four bytes of native storage. This fails to
// compile if word is ever not four bytes wide.
var _ [4]byte = [unsafe.Sizeof(word(0))]byte{}

var (
	littleLayout = [4]byte{1, 0, 0, 0}
	bigLayout    = [4]byte{0, 0, 0, 1}
)

// Wire is the byte order of every multi-byte integer in the stored format.
var Wire binary.ByteOrder = binary.LittleEndian

// Host is the Normalizer for the running process.
var Host Normalizer

func init() {
	n := word(1)
	layout := *(*[4]byte)(unsafe.Pointer(&n))

	var err error
	if Host, err = fromLayout(layout, nativeOrder(layout)); err != nil {
		panic(err)
	}
}

// nativeOrder returns the binary.ByteOrder that loads native words laid out as
// layout. An unrecognized layout returns nil.
func nativeOrder(layout [4]byte) binary.ByteOrder {
	switch layout {
	case littleLayout:
		return binary.LittleEndian
	case bigLayout:
		return binary.BigEndian
	default:
		return nil
	}
}

// Swap32 reverses the bytes of x.
func Swap32(x uint32) uint32 {
	return ((x & 0x000000FF) << 24) |
		((x & 0x0000FF00) << 8) |
		((x & 0x00FF0000) >> 8) |
		((x & 0xFF000000) >> 24)
}

// Normalizer converts words between a host byte order and wire order.
//
// The zero value is not valid; use Host or New.
type Normalizer struct {
	native binary.ByteOrder
	little bool
}

// New returns a Normalizer for a host whose native storage uses order.
//
// The order is classified the same way the real host is: the value 1 is stored
// through it, and the resulting layout is compared against the little-endian
// layout. Orders that are neither little- nor big-endian are rejected.
func New(order binary.ByteOrder) (Normalizer, error) {
	if order == nil {
		return Normalizer{}, errors.New("no byte order supplied")
	}

	var layout [4]byte
	order.PutUint32(layout[:], 1)
	return fromLayout(layout, order)
}

func fromLayout(layout [4]byte, order binary.ByteOrder) (Normalizer, error) {
	switch layout {
	case littleLayout:
		return Normalizer{native: order, little: true}, nil
	case bigLayout:
		return Normalizer{native: order, little: false}, nil
	default:
		return Normalizer{}, errors.Errorf("unsupported native word layout % X", layout[:])
	}
}

// IsLittleEndian returns true if the host stores words in little-endian
// order, in which case conversions are no-ops.
func (n Normalizer) IsLittleEndian() bool { return n.little }

// Order returns the host's native byte order.
func (n Normalizer) Order() binary.ByteOrder { return n.native }

// ToWire converts a host-order value into wire order.
func (n Normalizer) ToWire(x uint32) uint32 {
	if n.little {
		return x
	}
	return Swap32(x)
}

// FromWire converts a wire-order value into host order.
func (n Normalizer) FromWire(x uint32) uint32 {
	if n.little {
		return x
	}
	return Swap32(x)
}

// Load reads a word from native storage in b and returns its host value.
//
// b must be at least four bytes long.
func (n Normalizer) Load(b []byte) uint32 { return n.FromWire(n.native.Uint32(b)) }

// Store writes v into b as native storage of its wire-order value.
//
// b must be at least four bytes long.
func (n Normalizer) Store(b []byte, v uint32) { n.native.PutUint32(b, n.ToWire(v)) }
