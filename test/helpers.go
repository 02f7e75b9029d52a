package test

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"

	"github.com/sandevgo/bizbot/internal/core"
)

// FakeEmbedder returns canned vectors for known texts and a deterministic
// hash-derived vector for everything else, so tests control similarity
// without a real embedding backend.
type FakeEmbedder struct {
	Dim     int
	Vectors map[string][]float32
	FailOn  map[string]bool
}

func NewFakeEmbedder(dim int) *FakeEmbedder {
	return &FakeEmbedder{
		Dim:     dim,
		Vectors: make(map[string][]float32),
		FailOn:  make(map[string]bool),
	}
}

func (f *FakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.FailOn[text] {
		return nil, errors.New("embedding backend unavailable")
	}
	if v, ok := f.Vectors[text]; ok {
		return normalize(pad(v, f.Dim)), nil
	}
	return hashVector(text, f.Dim), nil
}

func (f *FakeEmbedder) Dims() int {
	return f.Dim
}

func pad(v []float32, dim int) []float32 {
	out := make([]float32, dim)
	copy(out, v)
	return out
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func hashVector(text string, dim int) []float32 {
	sum := sha256.Sum256([]byte(text))
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(sum[i%len(sum)]) / 255
	}
	return normalize(v)
}

// FakeModel is a scripted model collaborator.
type FakeModel struct {
	Answer string
	Err    error
	// LastRequest records the final dispatch for assertions.
	LastRequest *core.ModelRequest
}

func (f *FakeModel) Generate(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	f.LastRequest = &req
	if f.Err != nil {
		return core.ModelResponse{}, f.Err
	}
	if err := ctx.Err(); err != nil {
		return core.ModelResponse{}, err
	}
	return core.ModelResponse{Answer: f.Answer}, nil
}

func (f *FakeModel) Models(ctx context.Context) ([]core.Model, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return []core.Model{{ID: "fake-1", Name: "Fake Model"}}, nil
}

// HangingModel blocks until the context is cancelled, for timeout tests.
type HangingModel struct{}

func (HangingModel) Generate(ctx context.Context, req core.ModelRequest) (core.ModelResponse, error) {
	<-ctx.Done()
	return core.ModelResponse{}, ctx.Err()
}

func (HangingModel) Models(ctx context.Context) ([]core.Model, error) {
	return []core.Model{{ID: "hang-1", Name: "Hanging Model"}}, nil
}
