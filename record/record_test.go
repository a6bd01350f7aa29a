package record

import "testing"

func TestWriterReserveAndPatch(t *testing.T) {
	w := NewWriter(16, 0)
	off, err := w.Reserve(2)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := w.WriteBytes([]byte("hi")); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	if err := w.PatchU16(off, 2); err != nil {
		t.Fatalf("PatchU16: %v", err)
	}
	got := w.Bytes()
	want := []byte{0x00, 0x02, 'h', 'i'}
	if string(got) != string(want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestWriterRejectsOverflow(t *testing.T) {
	w := NewWriter(2, 0)
	if err := w.WriteU16(1); err != nil {
		t.Fatalf("first WriteU16: %v", err)
	}
	if err := w.WriteU16(2); err == nil {
		t.Fatal("expected a capacity error on the second write")
	}
}

func TestPatchU16RejectsUnwrittenOffset(t *testing.T) {
	w := NewWriter(8, 0)
	if err := w.WriteU16(1); err != nil {
		t.Fatalf("WriteU16: %v", err)
	}
	if err := w.PatchU16(4, 9); err == nil {
		t.Fatal("expected an error patching past the written region")
	}
}

func TestLengthStackBubblesAccumulator(t *testing.T) {
	var s LengthStack
	s.Push(0)
	s.Add(3)
	s.Push(10)
	s.Add(5)
	innerOff, innerLen := s.Pop()
	if innerOff != 10 || innerLen != 5 {
		t.Fatalf("inner pop = (%d,%d), want (10,5)", innerOff, innerLen)
	}
	outerOff, outerLen := s.Pop()
	if outerOff != 0 || outerLen != 8 {
		t.Fatalf("outer pop = (%d,%d), want (0,8) — inner length should fold into outer", outerOff, outerLen)
	}
	if s.Len() != 0 {
		t.Fatalf("stack should be empty after both pops, got depth %d", s.Len())
	}
}

func TestLengthStackPopOnEmptyIsZero(t *testing.T) {
	var s LengthStack
	off, length := s.Pop()
	if off != 0 || length != 0 {
		t.Fatalf("Pop on empty stack = (%d,%d), want (0,0)", off, length)
	}
}

func TestKeyStackTopAndPop(t *testing.T) {
	var s KeyStack
	if _, ok := s.Top(); ok {
		t.Fatal("Top on empty stack should report ok=false")
	}
	s.Push(1, 100)
	s.Push(2, 200)
	top, ok := s.Top()
	if !ok || top.Field != 2 || top.Expected != 200 {
		t.Fatalf("Top = %+v, ok=%v, want Field=2 Expected=200 ok=true", top, ok)
	}
	s.Pop()
	top, ok = s.Top()
	if !ok || top.Field != 1 || top.Expected != 100 {
		t.Fatalf("Top after pop = %+v, ok=%v, want Field=1 Expected=100 ok=true", top, ok)
	}
}
