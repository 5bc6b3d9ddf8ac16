package segtag

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const toyCorpus = `我_r 爱_v 北京_ns
北京_ns 欢迎_v 你_r
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func trainToy(t *testing.T, opts Options) *Tagger {
	t.Helper()
	sents, err := LoadCorpus(writeFile(t, "train.txt", toyCorpus))
	if err != nil {
		t.Fatal(err)
	}
	config := DefaultTrainConfig()
	config.Options = opts
	tg, err := Train(t.Context(), sents, nil, config)
	if err != nil {
		t.Fatal(err)
	}
	return tg
}

func TestNewEmptyTags(t *testing.T) {
	_, err := New(nil, Options{})
	if !errors.Is(err, ErrNoTags) {
		t.Errorf("New(nil) error = %v, want %v", err, ErrNoTags)
	}
}

func TestNewMissingDict(t *testing.T) {
	_, err := New([]string{"n"}, Options{Dicts: []string{filepath.Join(t.TempDir(), "missing.dict")}})
	if err == nil {
		t.Error("expected error for missing dictionary")
	}
}

func TestUntaggedTagger(t *testing.T) {
	tg, err := New([]string{"n", "v"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	spans, err := tg.Tag("")
	if err != nil {
		t.Fatal(err)
	}
	if len(spans) != 0 {
		t.Errorf("Tag(\"\") = %v, want no spans", spans)
	}

	// Every character must be covered exactly once even with zero weights.
	raw := "今天，下雪"
	spans, err = tg.Tag(raw)
	if err != nil {
		t.Fatal(err)
	}
	pos := 0
	for _, s := range spans {
		if s.Begin != pos {
			t.Fatalf("span %v does not start at %d", s, pos)
		}
		pos = s.End
	}
	if pos != 5 {
		t.Errorf("spans end at %d, want 5", pos)
	}
}

func TestTagString(t *testing.T) {
	tg := trainToy(t, Options{})
	got, err := tg.TagString("你爱北京")
	if err != nil {
		t.Fatal(err)
	}
	want := "你_r 爱_v 北京_ns"
	if got != want {
		t.Errorf("TagString = %q, want %q", got, want)
	}
}

func TestSaveLoad(t *testing.T) {
	dict := writeFile(t, "place.dict", "北京 ns\n天津 ns\n")
	tg := trainToy(t, Options{Dicts: []string{dict}, WordKeys: true})

	prefix := filepath.Join(t.TempDir(), "model", "toy")
	if err := tg.Save(prefix); err != nil {
		t.Fatal(err)
	}
	for _, suffix := range []string{WeightsSuffix, TagsSuffix, OptionsSuffix} {
		if _, err := os.Stat(prefix + suffix); err != nil {
			t.Errorf("missing %s: %v", suffix, err)
		}
	}

	loaded, err := Load(prefix, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(loaded.Tags(), " "); got != "r v ns" {
		t.Errorf("Tags = %q, want %q", got, "r v ns")
	}
	if !loaded.Options().WordKeys || len(loaded.Options().Dicts) != 1 {
		t.Errorf("Options = %+v, want the saved options", loaded.Options())
	}

	for _, raw := range []string{"我爱北京", "北京欢迎你", "你爱天津"} {
		want, err := tg.TagString(raw)
		if err != nil {
			t.Fatal(err)
		}
		got, err := loaded.TagString(raw)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("loaded TagString(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none"), Options{})
	if err == nil {
		t.Error("expected error for missing model")
	}
}
