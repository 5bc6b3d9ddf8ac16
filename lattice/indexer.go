package lattice

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Indexer maps between tag strings and dense integer IDs.
// IDs are assigned in insertion order and never change.
type Indexer struct {
	ToID  map[string]int
	ToStr []string
}

// NewIndexer creates an indexer holding tags in the given order.
func NewIndexer(tags ...string) *Indexer {
	ix := &Indexer{
		ToID: make(map[string]int, len(tags)),
	}
	for _, s := range tags {
		ix.Add(s)
	}
	return ix
}

// Add adds a tag if not already present and returns its ID.
func (ix *Indexer) Add(s string) int {
	if id, ok := ix.ToID[s]; ok {
		return id
	}
	id := len(ix.ToStr)
	ix.ToID[s] = id
	ix.ToStr = append(ix.ToStr, s)
	return id
}

// Get returns the ID for a tag, or -1 if not found.
func (ix *Indexer) Get(s string) int {
	if id, ok := ix.ToID[s]; ok {
		return id
	}
	return -1
}

// Tag returns the tag string for an ID.
func (ix *Indexer) Tag(id int) string {
	return ix.ToStr[id]
}

// Size returns the number of tags.
func (ix *Indexer) Size() int {
	return len(ix.ToStr)
}

// Dump writes one tag per line in ID order.
func (ix *Indexer) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, s := range ix.ToStr {
		if _, err := fmt.Fprintln(bw, s); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load appends the tags read from r, one per line.
func (ix *Indexer) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ix.Add(strings.TrimRight(scanner.Text(), "\r"))
	}
	return scanner.Err()
}

// SaveFile writes the indexer to path.
func (ix *Indexer) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ix.Dump(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write tags %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile reads tags from path.
func (ix *Indexer) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := ix.Load(f); err != nil {
		return fmt.Errorf("read tags %s: %w", path, err)
	}
	return nil
}
