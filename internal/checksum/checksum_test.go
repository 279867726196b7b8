package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty input.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %q, want %q", got, want)
	}
}

func TestETag(t *testing.T) {
	got := ETag([]byte("x"))
	if got[0] != '"' || got[len(got)-1] != '"' || len(got) != 66 {
		t.Errorf("ETag = %q", got)
	}
}
