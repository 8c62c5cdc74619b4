package variable

import (
	"errors"
	"testing"
)

func TestRegistryRegisterAndNew(t *testing.T) {
	r := NewRegistry()

	err := r.Register("stub", func() Variable { return newStub(1, 2.0) })
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	v, err := r.New("stub")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.Type() != "stub" {
		t.Errorf("Expected type stub, got %s", v.Type())
	}

	if r.Len() != 1 {
		t.Errorf("Expected 1 registered type, got %d", r.Len())
	}
}

func TestRegistryConflict(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("stub", func() Variable { return newStub(1, 2.0) }); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}

	err := r.Register("stub", func() Variable { return newStub(9, 9.0) })
	if !errors.Is(err, ErrConflictingRegistration) {
		t.Errorf("Expected ErrConflictingRegistration, got %v", err)
	}
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("", func() Variable { return newStub(1, 2.0) }); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if err := r.Register("stub", nil); !errors.Is(err, ErrNilFactory) {
		t.Errorf("Expected ErrNilFactory, got %v", err)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	r := NewRegistry()

	_, err := r.New("missing")
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"c", "a", "b"} {
		if err := r.Register(name, func() Variable { return newStub(1, 2.0) }); err != nil {
			t.Fatalf("Register %s failed: %v", name, err)
		}
	}

	names := r.Names()
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}
