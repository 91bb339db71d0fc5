package chunker

import (
	"strings"
	"testing"

	"github.com/Chenthemanl/corpusrag/internal/contenthash"
)

func TestSplitShortText(t *testing.T) {
	c := New(Config{})

	chunks, err := c.Split("a short paragraph")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "a short paragraph" {
		t.Errorf("content = %q", chunks[0].Content)
	}
	if chunks[0].ContentHash != contenthash.Text(chunks[0].Content) {
		t.Error("chunk hash must be the digest of the exact chunk text")
	}
}

func TestSplitBlankText(t *testing.T) {
	c := New(Config{})

	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks, err := c.Split(text)
		if err != nil {
			t.Fatalf("Split(%q) error = %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("Split(%q) = %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestSplitLongText(t *testing.T) {
	c := New(Config{ChunkSize: 100, ChunkOverlap: 20})

	paragraphs := make([]string, 20)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("word ", 12)
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several for long input", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Index != i {
			t.Errorf("chunk %d has Index %d", i, ch.Index)
		}
		if ch.Content == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if ch.TokenEstimate != len(ch.Content)/tokensPerChar {
			t.Errorf("chunk %d token estimate mismatch", i)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	c := New(Config{ChunkSize: 120, ChunkOverlap: 30})
	text := strings.Repeat("sentence one. sentence two. sentence three. ", 30)

	first, err := c.Split(text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Split(text)
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ContentHash != second[i].ContentHash {
			t.Errorf("chunk %d hash differs between runs", i)
		}
	}
}

func TestTexts(t *testing.T) {
	chunks := []Chunk{
		{Index: 0, Content: "a"},
		{Index: 1, Content: "b"},
	}
	texts := Texts(chunks)
	if len(texts) != 2 || texts[0] != "a" || texts[1] != "b" {
		t.Errorf("Texts() = %v", texts)
	}
}

func TestNewClampsBadOverlap(t *testing.T) {
	// Overlap >= size would make the splitter loop; config must clamp it.
	c := New(Config{ChunkSize: 50, ChunkOverlap: 50})
	chunks, err := c.Split(strings.Repeat("text ", 100))
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) == 0 {
		t.Error("expected chunks from clamped config")
	}
}
