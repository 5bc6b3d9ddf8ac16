// Package dictionary provides gazetteers backed by a double-array trie.
//
// A gazetteer file holds one entry per line: a key, whitespace, and an
// optional value. Entries without a value map to the empty string.
package dictionary

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/edsrzf/mmap-go"
	"github.com/vcaesar/cedar"
)

// Dictionary maps keys to string values.
type Dictionary struct {
	trie   *cedar.Cedar
	keys   []string
	values []string
	maxLen int
}

// New creates an empty dictionary.
func New() *Dictionary {
	return &Dictionary{trie: cedar.New()}
}

// Add stores value under key. A repeated key keeps the latest value.
func (d *Dictionary) Add(key, value string) error {
	if key == "" {
		return nil
	}
	if id, err := d.trie.Get([]byte(key)); err == nil {
		d.values[id] = value
		return nil
	}
	if err := d.trie.Insert([]byte(key), len(d.values)); err != nil {
		return fmt.Errorf("insert %q: %w", key, err)
	}
	d.keys = append(d.keys, key)
	d.values = append(d.values, value)
	d.maxLen = max(d.maxLen, utf8.RuneCountInString(key))
	return nil
}

// Get returns the value stored under key.
func (d *Dictionary) Get(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	id, err := d.trie.Get([]byte(key))
	if err != nil {
		return "", false
	}
	return d.values[id], true
}

// Exists reports whether key is present.
func (d *Dictionary) Exists(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Float returns the value under key parsed as a number. Keys whose value is
// not numeric report false.
func (d *Dictionary) Float(key string) (float64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// HasPrefix reports whether some key starts with prefix.
func (d *Dictionary) HasPrefix(prefix string) bool {
	_, err := d.trie.Jump([]byte(prefix), 0)
	return err == nil
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return len(d.values)
}

// Keys returns the keys in insertion order.
func (d *Dictionary) Keys() []string {
	return d.keys
}

// MaxLen returns the length in characters of the longest key.
func (d *Dictionary) MaxLen() int {
	return d.maxLen
}

// Load reads "key [value]" lines from r into a new dictionary.
func Load(r io.Reader) (*Dictionary, error) {
	d := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		value := ""
		if len(fields) > 1 {
			value = fields[1]
		}
		if err := d.Add(fields[0], value); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile reads a gazetteer file. The file is memory-mapped while it is
// parsed.
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("read dictionary %s: %w", path, ErrEmpty)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("map dictionary %s: %w", path, err)
	}
	defer func() { _ = m.Unmap() }()

	d, err := Load(bytes.NewReader(m))
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("read dictionary %s: %w", path, ErrEmpty)
	}
	return d, nil
}

// ErrEmpty is returned when a gazetteer file has no entries.
var ErrEmpty = errors.New("no entries")
