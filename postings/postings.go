// Package postings holds the positional postings-list model and the
// on-disk codecs for it.
package postings

import (
	"github.com/k0kubun/pp/v3"
)

// Posting records every occurrence of one token within one document.
// Positions are zero-based token positions in strictly increasing order.
type Posting struct {
	DocumentID int
	Positions  []int
}

// List is a postings list: postings in strictly increasing DocumentID
// order, no duplicates.
type List []Posting

// Merge splices two postings lists into one ordered by ascending
// document id. Both inputs are consumed. Behavior is undefined when the
// inputs share a document id; callers must not produce duplicates.
func Merge(a, b List) List {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := make(List, 0, len(a)+len(b))
	for len(a) > 0 || len(b) > 0 {
		switch {
		case len(b) == 0 || (len(a) > 0 && a[0].DocumentID <= b[0].DocumentID):
			merged = append(merged, a[0])
			a = a[1:]
		default:
			merged = append(merged, b[0])
			b = b[1:]
		}
	}
	return merged
}

// Dump pretty-prints a postings list for diagnostics.
func Dump(list List) {
	pp.Println(list)
}
