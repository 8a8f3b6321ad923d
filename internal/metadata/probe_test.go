package metadata

import (
	"testing"

	"audioengine/internal/source"
)

func TestProbeUntaggedBytesIsZeroValue(t *testing.T) {
	src := source.FromBytes([]byte{0x00, 0x01, 0x02, 0x03}, struct{}{})
	got := Probe(src)
	if got != (Tags{}) {
		t.Fatalf("Probe on garbage bytes = %+v, want zero value", got)
	}
}

func TestProbeMissingPathIsZeroValue(t *testing.T) {
	src := source.FromPath[struct{}]("/nonexistent/does-not-exist.mp3", struct{}{})
	got := Probe(src)
	if got != (Tags{}) {
		t.Fatalf("Probe on missing path = %+v, want zero value", got)
	}
}
