package fhirtime

import "testing"

func TestParseDateTime(t *testing.T) {
	ms, err := Parse("2015-02-07T13:28:17-05:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := Format(ms)
	want := "2015-02-07T18:28:17.000Z"
	if got != want {
		t.Fatalf("Format(Parse(...)) = %q, want %q", got, want)
	}
}

func TestParseCalendarPrecisions(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"2018", "2018-01-01T00:00:00.000Z"},
		{"1973-06", "1973-06-01T00:00:00.000Z"},
		{"1905-08-23", "1905-08-23T00:00:00.000Z"},
	}
	for _, c := range cases {
		ms, err := Parse(c.input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.input, err)
		}
		if got := Format(ms); got != c.want {
			t.Fatalf("Parse(%q) -> Format = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestParseRejectsBadYear(t *testing.T) {
	if _, err := Parse("abcd"); err == nil {
		t.Fatal("expected an error for a non-numeric year")
	}
}

func TestTimestampBytesRoundTrip(t *testing.T) {
	ms, err := Parse("2015-02-07T13:28:17-05:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b := TimestampBytes(ms)
	got, err := TimestampFromBytes(b[:])
	if err != nil {
		t.Fatalf("TimestampFromBytes: %v", err)
	}
	if got != ms {
		t.Fatalf("round trip = %d, want %d", got, ms)
	}
}

func TestTimestampFromBytesRejectsWrongLength(t *testing.T) {
	if _, err := TimestampFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for a non-8-byte payload")
	}
}
