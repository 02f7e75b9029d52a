package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode"

	"github.com/sandevgo/bizbot/internal/core"
)

type ChunkerConfig struct {
	ChunkTokens   int
	OverlapTokens int
}

// DefaultChunkerConfig fits common embedding models with a 512-token context.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkTokens:   400,
		OverlapTokens: 50,
	}
}

// Chunker splits adapter output into bounded, overlapping windows with
// provenance metadata. Identical input always produces identical chunk ids
// and boundaries.
type Chunker struct {
	cfg ChunkerConfig
}

func NewChunker(cfg ChunkerConfig) (*Chunker, error) {
	if cfg.ChunkTokens <= 0 {
		return nil, core.NewConfigError("chunk_tokens must be positive, got %d", cfg.ChunkTokens)
	}
	if cfg.OverlapTokens < 0 {
		return nil, core.NewConfigError("overlap_tokens must not be negative, got %d", cfg.OverlapTokens)
	}
	if cfg.OverlapTokens >= cfg.ChunkTokens {
		return nil, core.NewConfigError("overlap_tokens %d must be smaller than chunk_tokens %d", cfg.OverlapTokens, cfg.ChunkTokens)
	}
	return &Chunker{cfg: cfg}, nil
}

// Chunk dispatches on the origin type. Chat imports pack whole messages per
// window; everything else packs sentences.
func (c *Chunker) Chunk(src *core.RawSource) ([]core.Chunk, error) {
	switch src.OriginType {
	case core.OriginChatImport:
		if len(src.Messages) > 0 {
			return c.chunkMessages(src), nil
		}
		return c.chunkText(src), nil
	case core.OriginWebsite:
		return c.chunkText(src), nil
	default:
		return nil, core.NewConfigError("unknown origin type: %q", src.OriginType)
	}
}

func (c *Chunker) chunkText(src *core.RawSource) []core.Chunk {
	text := strings.TrimSpace(src.Text)
	if text == "" {
		return nil
	}

	sentences := splitSentencesUnicode(text)

	var chunks []core.Chunk
	var window []string
	windowText := ""
	position := 0

	flush := func() {
		if windowText == "" {
			return
		}
		chunks = append(chunks, c.newChunk(src, windowText, core.ChunkMetadata{
			OriginType: src.OriginType,
			Position:   position,
		}))
		position++
		window = nil
		windowText = ""
	}

	for _, sentence := range sentences {
		// A sentence larger than the whole window is sliced on raw token
		// boundaries; slices never chain into the overlap carry.
		if CountTokens(sentence) > c.cfg.ChunkTokens {
			flush()
			for _, piece := range sliceByTokens(sentence, c.cfg.ChunkTokens) {
				piece = strings.TrimSpace(piece)
				if piece == "" {
					continue
				}
				chunks = append(chunks, c.newChunk(src, piece, core.ChunkMetadata{
					OriginType: src.OriginType,
					Position:   position,
				}))
				position++
			}
			continue
		}

		candidate := sentence
		if windowText != "" {
			candidate = windowText + " " + sentence
		}

		if windowText != "" && CountTokens(candidate) > c.cfg.ChunkTokens {
			prev := window
			flush()

			window, windowText = c.overlapSeed(prev)
			candidate = sentence
			if windowText != "" {
				candidate = windowText + " " + sentence
				if CountTokens(candidate) > c.cfg.ChunkTokens {
					window, windowText = nil, ""
					candidate = sentence
				}
			}
		}

		window = append(window, sentence)
		windowText = candidate
	}
	flush()

	return chunks
}

// overlapSeed returns the trailing sentences of the previous window whose
// combined size stays within the overlap budget.
func (c *Chunker) overlapSeed(prev []string) ([]string, string) {
	if c.cfg.OverlapTokens <= 0 || len(prev) == 0 {
		return nil, ""
	}

	var seed []string
	tokens := 0
	for i := len(prev) - 1; i >= 0; i-- {
		n := CountTokens(prev[i])
		if tokens+n > c.cfg.OverlapTokens {
			break
		}
		seed = append([]string{prev[i]}, seed...)
		tokens += n
	}
	return seed, strings.Join(seed, " ")
}

type chatLine struct {
	text string
	msg  *core.ChatMessage
}

func (c *Chunker) chunkMessages(src *core.RawSource) []core.Chunk {
	var chunks []core.Chunk
	var window []chatLine
	windowText := ""
	position := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		first := window[0].msg
		chunks = append(chunks, c.newChunk(src, windowText, core.ChunkMetadata{
			OriginType: src.OriginType,
			Position:   position,
			Timestamp:  first.Timestamp,
			Sender:     first.Sender,
		}))
		position++
		window = nil
		windowText = ""
	}

	for i := range src.Messages {
		msg := &src.Messages[i]
		line := renderMessage(msg)
		if line == "" {
			continue
		}

		// A single message over the window size is split alone and every
		// piece flagged partial.
		if CountTokens(line) > c.cfg.ChunkTokens {
			flush()
			for _, piece := range sliceByTokens(line, c.cfg.ChunkTokens) {
				piece = strings.TrimSpace(piece)
				if piece == "" {
					continue
				}
				chunks = append(chunks, c.newChunk(src, piece, core.ChunkMetadata{
					OriginType: src.OriginType,
					Position:   position,
					Timestamp:  msg.Timestamp,
					Sender:     msg.Sender,
					Partial:    true,
				}))
				position++
			}
			continue
		}

		candidate := line
		if windowText != "" {
			candidate = windowText + "\n" + line
		}

		if windowText != "" && CountTokens(candidate) > c.cfg.ChunkTokens {
			prev := window
			flush()

			window, windowText = c.messageSeed(prev)
			candidate = line
			if windowText != "" {
				candidate = windowText + "\n" + line
				if CountTokens(candidate) > c.cfg.ChunkTokens {
					window, windowText = nil, ""
					candidate = line
				}
			}
		}

		window = append(window, chatLine{text: line, msg: msg})
		windowText = candidate
	}
	flush()

	return chunks
}

// messageSeed carries trailing whole messages into the next window, keeping
// chunk boundaries aligned to message boundaries.
func (c *Chunker) messageSeed(prev []chatLine) ([]chatLine, string) {
	if c.cfg.OverlapTokens <= 0 || len(prev) == 0 {
		return nil, ""
	}

	var seed []chatLine
	tokens := 0
	for i := len(prev) - 1; i >= 0; i-- {
		n := CountTokens(prev[i].text)
		if tokens+n > c.cfg.OverlapTokens {
			break
		}
		seed = append([]chatLine{prev[i]}, seed...)
		tokens += n
	}

	lines := make([]string, len(seed))
	for i, l := range seed {
		lines[i] = l.text
	}
	return seed, strings.Join(lines, "\n")
}

func renderMessage(m *core.ChatMessage) string {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return ""
	}
	if m.Sender != "" {
		return m.Sender + ": " + text
	}
	return text
}

func (c *Chunker) newChunk(src *core.RawSource, text string, meta core.ChunkMetadata) core.Chunk {
	return core.Chunk{
		ID:         chunkID(src.SourceID, meta.Position, text),
		SourceID:   src.SourceID,
		Text:       text,
		TokenCount: CountTokens(text),
		Metadata:   meta,
	}
}

func chunkID(sourceID string, position int, text string) string {
	sum := sha256.Sum256([]byte(sourceID + "|" + strconv.Itoa(position) + "|" + text))
	return hex.EncodeToString(sum[:])
}

// splitSentencesUnicode splits text into sentences using Unicode rules.
func splitSentencesUnicode(text string) []string {
	paragraphs := splitParagraphs(text)

	sentenceEnders := map[rune]bool{
		'.': true, '!': true, '?': true,
		'。': true, '！': true, '？': true, '．': true, '…': true,
	}

	var sentences []string

	for _, para := range paragraphs {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)

			if sentenceEnders[r] {
				// End of sentence only before whitespace, end of text, or CJK.
				if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) || isCJK(runes[i+1]) {
					s := strings.TrimSpace(current.String())
					if s != "" {
						sentences = append(sentences, s)
					}
					current.Reset()
				}
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}

	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")

	var result []string
	for _, p := range parts {
		// Collapse soft wraps inside a paragraph.
		p = strings.ReplaceAll(p, "\n", " ")
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
