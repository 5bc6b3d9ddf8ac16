package lattice

import (
	"strconv"

	"github.com/happyhackingspace/segtag/internal/textutil"
)

func (f *Feature) calcCharTypes() {
	f.charTypes = f.charTypes[:0]
	for i := 0; i+1 < len(f.off); i++ {
		f.charTypes = append(f.charTypes, textutil.StringClass(f.raw[f.off[i]:f.off[i+1]]))
	}
}

// wordKeysOf appends the character-class keys of span to keys.
// Single characters see their neighbours ("#" at the sentence edge), two
// character words their own classes, and longer words their first class, the
// union of interior classes and their last class.
func (f *Feature) wordKeysOf(span Span, keys []string) []string {
	if len(f.charTypes) < span.End || span.Len() <= 0 {
		return keys
	}
	ct := f.charTypes
	buf := make([]byte, 0, 8)
	buf = append(buf, "CT:"...)
	switch span.Len() {
	case 1:
		buf = append(buf, 'U')
		if span.Begin > 0 {
			buf = appendClass(buf, ct[span.Begin-1])
		} else {
			buf = append(buf, '#')
		}
		buf = appendClass(buf, ct[span.Begin])
		if span.End < len(ct) {
			buf = appendClass(buf, ct[span.End])
		} else {
			buf = append(buf, '#')
		}
	case 2:
		buf = append(buf, 'B')
		buf = appendClass(buf, ct[span.Begin])
		buf = appendClass(buf, ct[span.Begin+1])
	default:
		buf = append(buf, 'M')
		buf = appendClass(buf, ct[span.Begin])
		inner := 0
		for i := span.Begin + 1; i < span.End-1; i++ {
			inner |= ct[i]
		}
		buf = appendClass(buf, inner)
		buf = appendClass(buf, ct[span.End-1])
	}
	return append(keys, string(buf))
}

func appendClass(buf []byte, class int) []byte {
	return strconv.AppendInt(buf, int64(class), 16)
}
