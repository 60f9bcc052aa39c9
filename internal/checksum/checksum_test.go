package checksum

import "testing"

func TestSumKnownVector(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s, want %s", got, want)
	}
}

func TestFieldsBoundaries(t *testing.T) {
	if Fields("ab", "c") == Fields("a", "bc") {
		t.Error("field boundaries must change the digest")
	}
	if Fields("a", "b") != Fields("a", "b") {
		t.Error("Fields must be deterministic")
	}
	if Fields("") == Fields() {
		t.Error("an empty field differs from no field")
	}
}
