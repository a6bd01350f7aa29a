package reader

import (
	"encoding/json"
	"reflect"
	"testing"

	"fhirbin/translator"
)

func roundTrip(t *testing.T, input string) map[string]interface{} {
	t.Helper()
	encoded, err := translator.Encode([]byte(input), 4096, 0)
	if err != nil {
		t.Fatalf("Encode(%q): %v", input, err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v (input %q)", err, input)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(decoded, &got); err != nil {
		t.Fatalf("decoded output is not valid JSON: %v\noutput: %s", err, decoded)
	}
	return got
}

func wantJSON(t *testing.T, input string) map[string]interface{} {
	t.Helper()
	var want map[string]interface{}
	if err := json.Unmarshal([]byte(input), &want); err != nil {
		t.Fatalf("test fixture itself is not valid JSON: %v", err)
	}
	return want
}

func TestRoundTripMinimal(t *testing.T) {
	input := `{"resourceType":"patient"}`
	got := roundTrip(t, input)
	want := wantJSON(t, input)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRoundTripMultiplePrimitives(t *testing.T) {
	input := `{"resourceType":"patient","active":true}`
	got := roundTrip(t, input)
	want := wantJSON(t, input)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRoundTripCompositeValue(t *testing.T) {
	input := `{"text":{"status":"done","div":"<div xmlns=\"http://www.w3.org/1999/xhtml\">"}}`
	got := roundTrip(t, input)
	want := wantJSON(t, input)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRoundTripPrimitiveList(t *testing.T) {
	input := `{"given":["Rainer","Maria"]}`
	got := roundTrip(t, input)
	want := wantJSON(t, input)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRoundTripCompositeList(t *testing.T) {
	input := `{"resourceType":"patient","name":[{"use":"official","family":"Chalmers","given":["Peter","James"]},{"use":"usual","given":["Jim"]}]}`
	got := roundTrip(t, input)
	want := wantJSON(t, input)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestRoundTripPolymorphic(t *testing.T) {
	for _, input := range []string{
		`{"deceased":true}`,
		`{"deceased":"2015-02-07T13:28:17-05:00"}`,
		`{"multipleBirth":1}`,
	} {
		got := roundTrip(t, input)
		if input == `{"deceased":"2015-02-07T13:28:17-05:00"}` {
			// Timestamps round-trip to millisecond-precision UTC, not the
			// original string — just check the field survived as a string.
			if _, ok := got["deceased"].(string); !ok {
				t.Fatalf("expected deceased to decode as a string, got %#v", got["deceased"])
			}
			continue
		}
		want := wantJSON(t, input)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %#v, want %#v (input %q)", got, want, input)
		}
	}
}

func TestDecodeRejectsBadLengthPrefix(t *testing.T) {
	_, err := Decode([]byte{0x00, 0xFF, 0x00})
	if err == nil {
		t.Fatal("expected an error for a length prefix that does not match the buffer")
	}
}
