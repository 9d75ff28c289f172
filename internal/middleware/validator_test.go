package middleware

import "testing"

func TestValidateSessionID(t *testing.T) {
	cases := map[string]bool{
		"abc-123_X": true,
		"":          false,
		"a/b":       false,
		"has space": false,
	}
	for in, ok := range cases {
		err := ValidateSessionID(in)
		if ok && err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
		}
		if !ok && err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}

func TestValidateRecordID(t *testing.T) {
	if err := ValidateRecordID("6f1c2c0e-8a0e-4c1f-9a55-0d6f3f0b9b11"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateRecordID("not-a-uuid"); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateLimit(t *testing.T) {
	if got := ValidateLimit(0, 10, 10); got != 10 {
		t.Fatalf("default: got %d", got)
	}
	if got := ValidateLimit(50, 10, 10); got != 10 {
		t.Fatalf("clamp: got %d", got)
	}
	if got := ValidateLimit(3, 10, 10); got != 3 {
		t.Fatalf("passthrough: got %d", got)
	}
}

func TestSanitizeString(t *testing.T) {
	got := SanitizeString("  sore\x00 throat\x07\n ")
	if got != "sore throat" {
		t.Fatalf("got %q", got)
	}
}
