package sqlite

import (
	"testing"
)

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1.5, 0, 3.75}

	blob, err := serializeVector(vec)
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) != len(vec)*4 {
		t.Fatalf("blob length %d, want %d", len(blob), len(vec)*4)
	}

	got, err := deserializeVector(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(vec) {
		t.Fatalf("round-trip length %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("component %d: got %v, want %v", i, got[i], vec[i])
		}
	}
}

func TestDeserializeVectorRejectsTruncatedBlob(t *testing.T) {
	blob, err := serializeVector([]float32{1, 2})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := deserializeVector(blob[:len(blob)-1]); err == nil {
		t.Error("truncated blob must not deserialize")
	}
}
