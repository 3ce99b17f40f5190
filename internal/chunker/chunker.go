// Package chunker splits raw text into overlapping fixed-size windows for
// embedding and indexing.
package chunker

import (
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 128

// NewsChunkSize is the chunk size used for news articles. News text is
// shorter and more topically dense than filings, so it gets smaller windows.
const NewsChunkSize = 256

// Split divides text into chunks of at most size characters, each
// overlapping the previous chunk by overlap characters.
//
// The window starts at offset 0 and advances by size-overlap per step; the
// final chunk is the tail of the text and may be shorter than size. Chunks
// fully cover the text with no gaps. Empty text yields no chunks and no
// error.
//
// Fails with domain.ErrInvalidChunking when size <= 0, overlap < 0, or
// overlap >= size (zero forward progress).
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, domain.ErrInvalidChunking
	}
	if text == "" {
		return nil, nil
	}

	// Window over runes so a chunk boundary never splits a multi-byte
	// character.
	runes := []rune(text)
	step := size - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)

	for start := 0; ; start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
