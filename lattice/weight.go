package lattice

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrLengthMismatch is returned when a vector is added to a key whose
	// stored vector has a different length.
	ErrLengthMismatch = errors.New("weight vector length mismatch")
	// ErrMalformed is returned when a persisted weight file is inconsistent.
	ErrMalformed = errors.New("malformed weight file")
)

// Weight is a sparse store mapping feature keys to fixed-length vectors.
//
// Slices returned by Get alias the stored vectors. They stay valid when other
// keys are inserted later, since map growth never moves a slice's backing array.
type Weight struct {
	m map[string][]float64
}

// NewWeight creates an empty weight store.
func NewWeight() *Weight {
	return &Weight{m: make(map[string][]float64)}
}

// Insert creates a zero vector of length n for key if key is absent.
func (w *Weight) Insert(key string, n int) {
	if _, ok := w.m[key]; ok {
		return
	}
	w.m[key] = make([]float64, n)
}

// Get returns the live vector stored for key, or nil.
func (w *Weight) Get(key string) []float64 {
	return w.m[key]
}

// AddFrom adds values*scale into the vector for key, creating it if needed.
// An all-zero values vector is a no-op and never creates key.
func (w *Weight) AddFrom(key string, values []float64, scale float64) error {
	if allZero(values) {
		return nil
	}
	vec, ok := w.m[key]
	if !ok {
		vec = make([]float64, len(values))
		w.m[key] = vec
	} else if len(vec) != len(values) {
		return fmt.Errorf("add %q: have %d, got %d: %w", key, len(vec), len(values), ErrLengthMismatch)
	}
	for i, v := range values {
		vec[i] += v * scale
	}
	return nil
}

// AddTo adds the vector stored for key into out. Absent keys are ignored.
func (w *Weight) AddTo(key string, out []float64) {
	for i, v := range w.m[key] {
		out[i] += v
	}
}

// Update merges every non-zero vector of other, scaled by eta, into w.
func (w *Weight) Update(other *Weight, eta float64) error {
	for key, vec := range other.m {
		if err := w.AddFrom(key, vec, eta); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of w.
func (w *Weight) Clone() *Weight {
	c := &Weight{m: make(map[string][]float64, len(w.m))}
	for key, vec := range w.m {
		c.m[key] = append([]float64(nil), vec...)
	}
	return c
}

// Clear removes every key.
func (w *Weight) Clear() {
	clear(w.m)
}

// Len returns the number of keys.
func (w *Weight) Len() int {
	return len(w.m)
}

// Keys returns all keys in sorted order.
func (w *Weight) Keys() []string {
	keys := make([]string, 0, len(w.m))
	for k := range w.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dump writes one "key\tv1\t...\tvN" line per key, keys sorted.
func (w *Weight) Dump(out io.Writer) error {
	bw := bufio.NewWriter(out)
	buf := make([]byte, 0, 64)
	for _, key := range w.Keys() {
		buf = append(buf[:0], key...)
		for _, v := range w.m[key] {
			buf = append(buf, '\t')
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads vectors written by Dump and adds them into w.
// A key repeated with a different vector length is reported as ErrMalformed.
func (w *Weight) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		key := fields[0]
		values := make([]float64, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w: %v", lineNo, ErrMalformed, err)
			}
			values[i] = v
		}
		if vec, ok := w.m[key]; ok && len(vec) != len(values) {
			return fmt.Errorf("line %d: key %q has length %d, want %d: %w",
				lineNo, key, len(values), len(vec), ErrMalformed)
		}
		w.Insert(key, len(values))
		if err := w.AddFrom(key, values, 1); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// SaveFile dumps w to path.
func (w *Weight) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Dump(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write weights %s: %w", path, err)
	}
	return f.Close()
}

// LoadFile replaces the content of w with the weights stored at path.
func (w *Weight) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	w.Clear()
	if err := w.Load(f); err != nil {
		return fmt.Errorf("read weights %s: %w", path, err)
	}
	return nil
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}
