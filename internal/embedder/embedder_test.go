package embedder

import (
	"context"
	"testing"
)

func TestTextHash(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty string",
			text: "",
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name: "simple text",
			text: "hello world",
			want: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextHash(tt.text); got != tt.want {
				t.Errorf("TextHash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHotCacheGetReturnsCopy(t *testing.T) {
	hot := NewHotCache(10)
	hot.Set("k", &Embedding{Vector: []float32{1, 2, 3}, Dimension: 3})

	got, ok := hot.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	got.Vector[0] = 99

	again, _ := hot.Get("k")
	if again.Vector[0] != 1 {
		t.Error("mutating a returned vector polluted the cache")
	}
}

func TestHotCacheEvicts(t *testing.T) {
	hot := NewHotCache(2)
	hot.Set("a", &Embedding{})
	hot.Set("b", &Embedding{})
	hot.Set("c", &Embedding{})

	if hot.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after eviction", hot.Len())
	}
	if _, ok := hot.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestLocalProviderDeterministic(t *testing.T) {
	local, err := NewLocalProvider(nil)
	if err != nil {
		t.Fatal(err)
	}

	a, err := local.EmbedOne(context.Background(), "some chunk text")
	if err != nil {
		t.Fatal(err)
	}
	b, err := local.EmbedOne(context.Background(), "some chunk text")
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Vector) != LocalDimension {
		t.Errorf("dimension = %d, want %d", len(a.Vector), LocalDimension)
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			t.Fatalf("vectors differ at %d for identical text", i)
		}
	}

	other, err := local.EmbedOne(context.Background(), "different text")
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range a.Vector {
		if a.Vector[i] != other.Vector[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestLocalProviderBatchOrder(t *testing.T) {
	local, err := NewLocalProvider(NewHotCache(16))
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{"x", "y", "z"}
	batch, err := local.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("got %d embeddings for %d texts", len(batch), len(texts))
	}
	for i, text := range texts {
		if batch[i].Hash != TextHash(text) {
			t.Errorf("embedding %d hash mismatch", i)
		}
	}
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("normalized vector has magnitude^2 = %v, want 1", sum)
	}

	zero := NormalizeVector([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Error("zero vector should pass through unchanged")
	}
}
