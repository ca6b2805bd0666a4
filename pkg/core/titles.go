package core

import "fmt"

// TitleRegistry numbers duplicate note titles across a batch.
//
// It is built from a pre-scan of every title in the batch and then consulted once per
// note in archive order, so numbering depends only on input order.
type TitleRegistry struct {
	counts map[string]int
	next   map[string]int
	// taken holds every title seen by the pre-scan or handed out since.
	taken map[string]bool
}

// NewTitleRegistry pre-scans titles and remembers which ones occur more than once.
func NewTitleRegistry(titles []string) *TitleRegistry {
	r := &TitleRegistry{
		counts: make(map[string]int),
		next:   make(map[string]int),
		taken:  make(map[string]bool),
	}
	for _, t := range titles {
		r.counts[t]++
		r.taken[t] = true
	}
	for t, n := range r.counts {
		if n > 1 {
			r.next[t] = 1
		}
	}
	return r
}

// Duplicates returns every duplicated title with its number of occurrences.
func (r *TitleRegistry) Duplicates() map[string]int {
	out := make(map[string]int)
	for t, n := range r.counts {
		if n > 1 {
			out[t] = n
		}
	}
	return out
}

// Resolve returns the title to use for the next note carrying title.
// The first occurrence keeps its title; later ones get the lowest free " 2", " 3", ...
// appended and renamed is true. A suffix is free when no other note in the batch carries
// that title. Titles the pre-scan never saw are returned unchanged.
func (r *TitleRegistry) Resolve(title string) (resolved string, renamed bool) {
	if r == nil {
		return title, false
	}
	n, ok := r.next[title]
	if !ok {
		return title, false
	}
	if n == 1 {
		r.next[title] = 2
		return title, false
	}
	candidate := fmt.Sprintf("%s %d", title, n)
	for r.taken[candidate] {
		n++
		candidate = fmt.Sprintf("%s %d", title, n)
	}
	r.taken[candidate] = true
	r.next[title] = n + 1
	return candidate, true
}
