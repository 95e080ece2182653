package indexer

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the maximum chunk length in runes.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is the overlap between consecutive chunks in runes.
	DefaultChunkOverlap = 50
)

// defaultSeparators are tried in priority order: paragraph breaks first,
// then line breaks, then spaces, then a hard rune split as last resort.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits document text into bounded, overlapping chunks by
// recursively descending through an ordered list of separators.
// Splitting is deterministic: the same input always yields the same chunks.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter with the default size, overlap and separators.
func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		separators:   defaultSeparators,
	}
}

// Split splits text into chunks of at most ChunkSize runes. Consecutive
// chunks from the same text share up to ChunkOverlap runes of content.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.ChunkSize {
		return []string{text}
	}

	// Pick the highest-priority separator that occurs in the text.
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		// No separator left: hard split on rune boundaries with exact overlap.
		return splitRunes(text, s.ChunkSize, s.ChunkOverlap)
	}

	parts := strings.Split(text, sep)
	var pieces []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) > s.ChunkSize {
			pieces = append(pieces, s.split(part, rest)...)
		} else {
			pieces = append(pieces, part)
		}
	}

	return s.merge(pieces, sep)
}

// merge greedily packs pieces into chunks up to ChunkSize runes, carrying a
// trailing window of up to ChunkOverlap runes into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)

		if len(window) > 0 && total+sepLen+pieceLen > s.ChunkSize {
			chunks = append(chunks, strings.Join(window, sep))

			// Drop leading pieces until the retained tail fits within the
			// overlap budget and the incoming piece still fits in the chunk.
			for len(window) > 0 && (total > s.ChunkOverlap || total+sepLen+pieceLen > s.ChunkSize) {
				total -= utf8.RuneCountInString(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}

		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, piece)
		total += pieceLen
	}

	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, sep))
	}

	return chunks
}

// splitRunes performs a sliding-window split with an exact overlap of
// `overlap` runes between consecutive windows.
func splitRunes(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	stride := size - overlap
	if stride <= 0 {
		stride = size
	}

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
