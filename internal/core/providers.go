package core

import "context"

// ModelClient is the external language model collaborator. Generate is
// synchronous and opaque from the core's perspective; retries, if any, are the
// collaborator's business.
type ModelClient interface {
	Generate(ctx context.Context, req ModelRequest) (ModelResponse, error)
	Models(ctx context.Context) ([]Model, error)
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
}

// SourceAdapter produces decoded plain text for one ingestion origin. The
// pipeline never parses HTML or export formats itself; it dispatches on the
// enumerated origin type only.
type SourceAdapter interface {
	SourceID() string
	OriginType() OriginType
	Produce(ctx context.Context) (*RawSource, error)
}
