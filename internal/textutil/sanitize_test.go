package textutil

import "testing"

func TestSanitizeToken(t *testing.T) {
	tests := map[string]string{
		"Sesión 01.mp4":  "sesi_n_01.mp4",
		"  ":             "unknown",
		"Workshop-Video": "workshop-video",
		"///":            "unknown",
	}
	for in, want := range tests {
		if got := SanitizeToken(in); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
