package fhirerr

import (
	"errors"
	"testing"
)

func TestErrorMessagesIncludeDetail(t *testing.T) {
	err := Newf(KindUnknownKey, "field %q", "notAField")
	want := "unknown key: field \"notAField\""
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewWithoutDetailOmitsColon(t *testing.T) {
	err := New(KindEndOfInput, "")
	if err.Error() != "unexpected end of input" {
		t.Fatalf("Error() = %q, want bare kind text", err.Error())
	}
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := Newf(KindUnexpectedToken, "detail one")
	b := Sentinel(KindUnexpectedToken)
	if !errors.Is(a, b) {
		t.Fatal("expected errors.Is to match same-kind errors regardless of detail")
	}
	c := Sentinel(KindEndOfInput)
	if errors.Is(a, c) {
		t.Fatal("expected errors.Is to reject a different kind")
	}
}
