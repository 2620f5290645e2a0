package ainb

import "testing"

func TestStringPoolDedup(t *testing.T) {
	p := NewStringPool()

	a := p.Offset("Hello")
	b := p.Offset("World")
	c := p.Offset("Hello")

	if a != c {
		t.Errorf("Offset(%q) = %d on second call, want %d (same as first)", "Hello", c, a)
	}
	if a == b {
		t.Errorf("distinct strings got the same offset %d", a)
	}

	want := "Hello\x00World\x00"
	if got := p.Bytes(); string(got) != want {
		t.Errorf("pool bytes = %q, want %q", got, want)
	}
}

func TestDeferredU32Patch(t *testing.T) {
	w := NewWriter()

	tok := w.ReserveU32()
	w.WriteBytes([]byte("padding"))
	w.Patch(tok, 0xdeadbeef)

	buf := w.Bytes()
	if len(buf) < 4 {
		t.Fatalf("writer too short: %d bytes", len(buf))
	}
	got := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if got != 0xdeadbeef {
		t.Errorf("patched value = %#x, want %#x", got, 0xdeadbeef)
	}
}

func TestPatchHereRecordsCurrentOffset(t *testing.T) {
	w := NewWriter()
	tok := w.ReserveU32()
	w.WriteBytes([]byte("xxxx")) // 4 bytes before the patched position
	w.PatchHere(tok)

	buf := w.Bytes()
	got := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if got != 8 {
		t.Errorf("PatchHere recorded offset %d, want 8", got)
	}
}
