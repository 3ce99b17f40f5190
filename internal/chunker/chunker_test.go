package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

func TestSplit_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.size, tt.overlap)
			if !errors.Is(err, domain.ErrInvalidChunking) {
				t.Errorf("expected ErrInvalidChunking, got %v", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	chunks, err := Split("", 100, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty text, got %d", len(chunks))
	}
}

func TestSplit_SmallText(t *testing.T) {
	text := "semiconductor demand is rising"
	chunks, err := Split(text, DefaultChunkSize, DefaultChunkOverlap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk should equal the full text")
	}
}

func TestSplit_Overlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 chars
	chunks, err := Split(text, 100, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the previous chunk's 20-char tail", i)
		}
	}
}

// Chunk count must equal ceil((len(text)-overlap) / (size-overlap)).
func TestSplit_CountFormula(t *testing.T) {
	tests := []struct {
		length  int
		size    int
		overlap int
	}{
		{1000, 512, 128},
		{512, 512, 128},
		{513, 512, 128},
		{300, 100, 20},
		{100, 100, 0},
		{101, 100, 0},
		{2500, 256, 128},
	}

	for _, tt := range tests {
		text := strings.Repeat("x", tt.length)
		chunks, err := Split(text, tt.size, tt.overlap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		step := tt.size - tt.overlap
		want := (tt.length - tt.overlap + step - 1) / step
		if len(chunks) != want {
			t.Errorf("len=%d size=%d overlap=%d: expected %d chunks, got %d",
				tt.length, tt.size, tt.overlap, want, len(chunks))
		}
	}
}

// Concatenating chunks with the overlap removed must reconstruct the text.
func TestSplit_Coverage(t *testing.T) {
	text := "Quarterly revenue grew 12% on strong data-center demand. " +
		strings.Repeat("Gross margin guidance was raised for the second consecutive quarter. ", 20)

	for _, cfg := range []struct{ size, overlap int }{
		{512, 128}, {256, 128}, {64, 16}, {50, 0},
	} {
		chunks, err := Split(text, cfg.size, cfg.overlap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var b strings.Builder
		for i, c := range chunks {
			if i == 0 {
				b.WriteString(c)
				continue
			}
			b.WriteString(c[cfg.overlap:])
		}
		if b.String() != text {
			t.Errorf("size=%d overlap=%d: reconstructed text differs from input", cfg.size, cfg.overlap)
		}
	}
}

// Chunk boundaries must never split a multi-byte character: every chunk
// stays valid UTF-8 and rune-exact reconstruction recovers the input.
func TestSplit_MultiByteText(t *testing.T) {
	text := strings.Repeat("营收增长12%，数据中心需求强劲 — margen bruta élevée. ", 10)

	chunks, err := Split(text, 40, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var b strings.Builder
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %d is not valid UTF-8: %q", i, c)
		}
		if n := utf8.RuneCountInString(c); n > 40 {
			t.Errorf("chunk %d has %d runes, want <= 40", i, n)
		}
		if i == 0 {
			b.WriteString(c)
			continue
		}
		b.WriteString(string([]rune(c)[8:]))
	}
	if b.String() != text {
		t.Errorf("reconstructed text differs from input")
	}
}

func TestSplit_MultiByteBoundary(t *testing.T) {
	// A 4-char window lands mid-dash when counted in bytes.
	chunks, err := Split("abc—def—ghi", 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"abc—", "def—", "ghi"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestSplit_MaxChunkLength(t *testing.T) {
	text := strings.Repeat("y", 5000)
	chunks, err := Split(text, 512, 128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		if len(c) > 512 {
			t.Errorf("chunk %d exceeds size: %d", i, len(c))
		}
		if len(c) == 0 {
			t.Errorf("chunk %d is empty", i)
		}
	}
}
