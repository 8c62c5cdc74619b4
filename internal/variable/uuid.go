package variable

import (
	"encoding/binary"
	"math"

	"github.com/google/uuid"
)

// TypeNamespace derives the UUID namespace for a variable type name. All
// instances of one concrete type hash their metadata under the same
// namespace, so equal metadata under different types never collides.
func TypeNamespace(typeName string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(typeName))
}

// FromMetadata derives a deterministic UUID from a type name and canonical
// metadata bytes. Same type + same metadata always yields the same UUID,
// across processes and restarts. The function is total; it never fails.
func FromMetadata(typeName string, metadata []byte) uuid.UUID {
	return uuid.NewSHA1(TypeNamespace(typeName), metadata)
}

// Metadata accumulates construction metadata into a canonical byte
// encoding for UUID generation. All fixed-width values are written
// big-endian and strings are length-prefixed, so the encoding is
// unambiguous and stable across platforms.
type Metadata struct {
	buf []byte
}

// PutUint64 appends an unsigned integer field.
func (m *Metadata) PutUint64(v uint64) *Metadata {
	m.buf = binary.BigEndian.AppendUint64(m.buf, v)
	return m
}

// PutFloat64 appends a float field as its IEEE 754 bit pattern.
func (m *Metadata) PutFloat64(v float64) *Metadata {
	m.buf = binary.BigEndian.AppendUint64(m.buf, math.Float64bits(v))
	return m
}

// PutString appends a length-prefixed string field.
func (m *Metadata) PutString(s string) *Metadata {
	m.buf = binary.BigEndian.AppendUint64(m.buf, uint64(len(s)))
	m.buf = append(m.buf, s...)
	return m
}

// Bytes returns the accumulated canonical encoding.
func (m *Metadata) Bytes() []byte {
	return m.buf
}
