package variable

import (
	"bytes"
	"testing"
)

func TestFromMetadataDeterministic(t *testing.T) {
	var m1, m2 Metadata
	m1.PutUint64(7).PutFloat64(1.0)
	m2.PutUint64(7).PutFloat64(1.0)

	u1 := FromMetadata("point2d", m1.Bytes())
	u2 := FromMetadata("point2d", m2.Bytes())

	if u1 != u2 {
		t.Errorf("Same type and metadata produced different UUIDs: %s vs %s", u1, u2)
	}
}

func TestFromMetadataDistinguishesMetadata(t *testing.T) {
	var m1, m2 Metadata
	m1.PutUint64(7).PutFloat64(1.0)
	m2.PutUint64(8).PutFloat64(1.0)

	u1 := FromMetadata("point2d", m1.Bytes())
	u2 := FromMetadata("point2d", m2.Bytes())

	if u1 == u2 {
		t.Error("Different metadata produced the same UUID")
	}
}

func TestFromMetadataDistinguishesTypes(t *testing.T) {
	var m Metadata
	m.PutUint64(7).PutFloat64(1.0)

	u1 := FromMetadata("point2d", m.Bytes())
	u2 := FromMetadata("point3d", m.Bytes())

	if u1 == u2 {
		t.Error("Different types produced the same UUID for equal metadata")
	}
}

func TestTypeNamespaceStable(t *testing.T) {
	if TypeNamespace("orientation3d") != TypeNamespace("orientation3d") {
		t.Error("Namespace derivation is not deterministic")
	}
	if TypeNamespace("point2d") == TypeNamespace("point3d") {
		t.Error("Distinct type names share a namespace")
	}
}

func TestMetadataEncoding(t *testing.T) {
	tests := []struct {
		name  string
		build func() []byte
		want  []byte
	}{
		{
			name: "uint64 big-endian",
			build: func() []byte {
				var m Metadata
				return m.PutUint64(1).Bytes()
			},
			want: []byte{0, 0, 0, 0, 0, 0, 0, 1},
		},
		{
			name: "string length-prefixed",
			build: func() []byte {
				var m Metadata
				return m.PutString("ab").Bytes()
			},
			want: []byte{0, 0, 0, 0, 0, 0, 0, 2, 'a', 'b'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build()
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encoding mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetadataFieldOrderMatters(t *testing.T) {
	var m1, m2 Metadata
	m1.PutUint64(1).PutUint64(2)
	m2.PutUint64(2).PutUint64(1)

	if FromMetadata("t", m1.Bytes()) == FromMetadata("t", m2.Bytes()) {
		t.Error("Field order should change the derived UUID")
	}
}
