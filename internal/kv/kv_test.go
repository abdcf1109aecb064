package kv

import (
	"reflect"
	"testing"
)

func TestMemoryGetSetDelete(t *testing.T) {
	m := NewMemory()

	if _, ok, err := m.Get("kept-sessions"); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v; want missing", ok, err)
	}

	if err := m.Set("kept-sessions", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := m.Get("kept-sessions")
	if err != nil || !ok || string(v) != "[]" {
		t.Fatalf("Get = %q, %v, %v; want [] true nil", v, ok, err)
	}

	if err := m.Set("kept-sessions", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatal(err)
	}
	v, _, _ = m.Get("kept-sessions")
	if string(v) != `[{"id":"a"}]` {
		t.Errorf("overwrite: got %q", v)
	}

	if err := m.Delete("kept-sessions"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Get("kept-sessions"); ok {
		t.Error("key still present after Delete")
	}
	if err := m.Delete("kept-sessions"); err != nil {
		t.Errorf("Delete of missing key error = %v", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	buf := []byte("hello")
	_ = m.Set("k", buf)
	buf[0] = 'j'

	v, _, _ := m.Get("k")
	if string(v) != "hello" {
		t.Errorf("stored value aliased caller buffer: %q", v)
	}
	v[0] = 'y'
	v2, _, _ := m.Get("k")
	if string(v2) != "hello" {
		t.Errorf("returned value aliased stored buffer: %q", v2)
	}
}

func TestMemoryKeys(t *testing.T) {
	m := NewMemory()
	_ = m.Set("session-messages-b", nil)
	_ = m.Set("session-messages-a", nil)
	_ = m.Set("kept-sessions", nil)

	got := m.Keys("session-messages-")
	want := []string{"session-messages-a", "session-messages-b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}
