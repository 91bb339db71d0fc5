package contenthash

import (
	"os"
	"path/filepath"
	"testing"
)

func TestText(t *testing.T) {
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
			if got := Text(tt.text); got != tt.want {
				t.Errorf("Text() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextDistinctInputs(t *testing.T) {
	a := Text("the quick brown fox")
	b := Text("the quick brown fox ") // trailing space matters
	if a == b {
		t.Error("different texts produced the same digest")
	}
	if a != Text("the quick brown fox") {
		t.Error("Text() not deterministic")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatal(err)
	}

	digest, size, err := File(path)
	if err != nil {
		t.Fatalf("File() error = %v", err)
	}
	if digest != Text("hello world") {
		t.Errorf("file digest %v does not match text digest", digest)
	}
	if size != int64(len("hello world")) {
		t.Errorf("size = %d, want %d", size, len("hello world"))
	}
}

func TestFileUnreadable(t *testing.T) {
	digest, size, err := File(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if digest != "" || size != 0 {
		t.Errorf("expected empty sentinel digest, got %q (size %d)", digest, size)
	}
}

func TestFileChangeChangesDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("version one"), 0644); err != nil {
		t.Fatal(err)
	}
	before, _, err := File(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("version two"), 0644); err != nil {
		t.Fatal(err)
	}
	after, _, err := File(path)
	if err != nil {
		t.Fatal(err)
	}

	if before == after {
		t.Error("digest did not change after file contents changed")
	}
}
