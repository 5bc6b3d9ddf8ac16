package lattice

// Scorer provides the candidate scores the PathFinder searches over.
type Scorer interface {
	// Prepare is called once per lattice before any score is requested.
	Prepare(lat *Lattice) error
	// Unigram scores candidate i on its own.
	Unigram(i int) float64
	// Bigram scores candidate b directly following candidate a.
	Bigram(a, b int) float64
}

// PathFinder finds the best-scoring path through a lattice.
// Its buffers are reused between calls, so a PathFinder must not be shared
// between goroutines.
type PathFinder struct {
	begins   [][]int
	ends     [][]int
	scores   []float64
	pointers []int
	reached  []bool
}

// FindPath returns the highest-scoring sequence of candidates covering the
// whole sentence, left to right. Ties keep the earliest candidate in lattice
// order. It returns nil when the lattice has no complete path.
func (pf *PathFinder) FindPath(lat *Lattice, scorer Scorer) ([]Span, error) {
	if err := scorer.Prepare(lat); err != nil {
		return nil, err
	}
	n := lat.Len()
	if n == 0 || len(lat.Spans) == 0 {
		return nil, nil
	}

	pf.reset(n, len(lat.Spans))
	for i, span := range lat.Spans {
		pf.ends[span.End] = append(pf.ends[span.End], i)
		pf.begins[span.Begin] = append(pf.begins[span.Begin], i)
	}

	for p := range n {
		for _, k := range pf.begins[p] {
			best, ptr, found := 0.0, 0, p == 0
			for _, j := range pf.ends[p] {
				if !pf.reached[j] {
					continue
				}
				score := pf.scores[j] + scorer.Bigram(j, k)
				if !found || best < score {
					best, ptr, found = score, j, true
				}
			}
			if !found {
				continue
			}
			pf.scores[k] = best + scorer.Unigram(k)
			pf.pointers[k] = ptr
			pf.reached[k] = true
		}
	}

	best, last, found := 0.0, 0, false
	for _, j := range pf.ends[n] {
		if pf.reached[j] && (!found || best < pf.scores[j]) {
			best, last, found = pf.scores[j], j, true
		}
	}
	if !found {
		return nil, nil
	}

	var path []Span
	for k := last; ; k = pf.pointers[k] {
		path = append(path, lat.Spans[k])
		if lat.Spans[k].Begin == 0 {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func (pf *PathFinder) reset(n, size int) {
	for len(pf.begins) <= n {
		pf.begins = append(pf.begins, nil)
		pf.ends = append(pf.ends, nil)
	}
	for i := 0; i <= n; i++ {
		pf.begins[i] = pf.begins[i][:0]
		pf.ends[i] = pf.ends[i][:0]
	}
	pf.scores = resize(pf.scores, size)
	pf.pointers = pf.pointers[:0]
	pf.reached = pf.reached[:0]
	for range size {
		pf.pointers = append(pf.pointers, 0)
		pf.reached = append(pf.reached, false)
	}
}

// resize returns buf with length n and every element zeroed.
func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	buf = buf[:n]
	clear(buf)
	return buf
}
