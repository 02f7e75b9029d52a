package core

import "time"

const (
	BizName          = "BizBot"
	BizUserAgent     = "BizBot/0.1"
	BizRepositoryURL = "https://github.com/sandevgo/bizbot"
	BizVersion       = "0.1.0"
)

// OriginType is the closed set of ingestion origins.
type OriginType string

const (
	OriginWebsite    OriginType = "website"
	OriginChatImport OriginType = "chat_import"
)

func (o OriginType) Valid() bool {
	return o == OriginWebsite || o == OriginChatImport
}

// Source is an ingestion origin. Immutable once recorded.
type Source struct {
	ID         string     `json:"source_id"`
	OriginType OriginType `json:"origin_type"`
	Location   string     `json:"location"`
	IngestedAt time.Time  `json:"ingested_at"`
}

// ChunkMetadata carries provenance for one chunk.
type ChunkMetadata struct {
	OriginType OriginType `json:"origin_type"`
	Position   int        `json:"position"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Sender     string     `json:"sender,omitempty"`
	// Partial marks a piece of a single message that alone exceeded the
	// chunk window and had to be split.
	Partial bool `json:"partial,omitempty"`
}

// Chunk is the atomic retrievable unit. The ID is derived from the source id,
// the window offset and a content hash, so identical input always reproduces
// the same id. Chunks are never mutated after creation; they disappear only
// when their source is removed.
type Chunk struct {
	ID         string        `json:"chunk_id"`
	SourceID   string        `json:"source_id"`
	Text       string        `json:"text"`
	TokenCount int           `json:"token_count"`
	Metadata   ChunkMetadata `json:"metadata"`
	Embedding  []float32     `json:"-"`
}

// ChatMessage is one parsed message of a chat export.
type ChatMessage struct {
	Sender    string
	Timestamp *time.Time
	Text      string
}

// RawSource is what a source adapter hands to the pipeline: already decoded
// plain text, plus per-message metadata for chat imports.
type RawSource struct {
	SourceID   string
	OriginType OriginType
	Location   string
	Text       string
	Messages   []ChatMessage
}

// RetrievalCandidate is query-scoped and never persisted.
type RetrievalCandidate struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"similarity"`
	Chunk   *Chunk  `json:"chunk"`
}

// ContextBlock is the token-bounded evidence set assembled for one model call.
// Citations hold the distinct source ids of included candidates in first
// appearance order.
type ContextBlock struct {
	Candidates []RetrievalCandidate `json:"candidates"`
	TokenCount int                  `json:"total_token_count"`
	Citations  []string             `json:"citations"`
}

func (b ContextBlock) Empty() bool {
	return len(b.Candidates) == 0
}

// ConversationTurn is one completed or failed query turn. Failed turns keep a
// NULL response in storage and carry the taxonomy tag instead.
type ConversationTurn struct {
	SessionID  string    `json:"session_id"`
	Query      string    `json:"query"`
	Response   string    `json:"response"`
	Citations  []string  `json:"citations,omitempty"`
	Failed     bool      `json:"failed,omitempty"`
	FailureTag string    `json:"failure_tag,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IngestError is a single non-fatal failure inside an ingestion batch.
type IngestError struct {
	ChunkID string `json:"chunk_id,omitempty"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// IngestionReport summarizes one ingest call. A re-ingestion of unchanged
// content shows Written = 0 with an empty error list, which is how callers
// tell "nothing new" from "nothing worked".
type IngestionReport struct {
	SourceID string        `json:"source_id"`
	Written  int           `json:"chunks_written"`
	Skipped  int           `json:"chunks_skipped"`
	Pruned   int           `json:"chunks_pruned,omitempty"`
	Errors   []IngestError `json:"errors,omitempty"`
}

// Filter restricts retrieval to an origin type or a single source.
type Filter struct {
	OriginType OriginType
	SourceID   string
}

func (f *Filter) Match(c *Chunk) bool {
	if f == nil {
		return true
	}
	if f.OriginType != "" && c.Metadata.OriginType != f.OriginType {
		return false
	}
	if f.SourceID != "" && c.SourceID != f.SourceID {
		return false
	}
	return true
}

// ContextChunk is one citation-tagged evidence chunk inside a model request.
type ContextChunk struct {
	ChunkID    string `json:"chunk_id"`
	Text       string `json:"text"`
	CitationID string `json:"citation_id"`
}

// HistoryTurn is a prior exchange replayed to the model.
type HistoryTurn struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// ModelRequest is the single structured request dispatched per turn.
// NoEvidence tells the client to instruct the model that retrieval found
// nothing; the flag is never silently dropped.
type ModelRequest struct {
	Query      string
	Chunks     []ContextChunk
	History    []HistoryTurn
	NoEvidence bool
}

type ModelResponse struct {
	Answer string
}

// Model describes one selectable model of a provider.
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HealthStatus is the health_check capability result.
type HealthStatus struct {
	RetrieverOK   bool `json:"retriever_ok"`
	IndexOK       bool `json:"index_ok"`
	ModelClientOK bool `json:"model_client_ok"`
}

func (h HealthStatus) OK() bool {
	return h.RetrieverOK && h.IndexOK && h.ModelClientOK
}
