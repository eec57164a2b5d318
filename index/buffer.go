// Package index builds and flushes the in-memory inverted index.
package index

import (
	"fmt"

	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/postings"
)

// Entry accumulates not-yet-flushed postings of one token. While
// indexing, DocsCount equals the number of postings held; in a query
// mini-index it carries the token's stored docs_count instead.
// PositionsCount is the total number of positions across the postings.
type Entry struct {
	TokenID        int
	Postings       postings.List
	DocsCount      int
	PositionsCount int
}

// Buffer maps token id to its accumulator entry. It doubles as the
// per-query mini-index, where entries carry a token's positions inside
// the query under the pseudo document id 0.
type Buffer map[int]*Entry

func NewBuffer() Buffer {
	return make(Buffer)
}

// Add appends one token occurrence. documentID must not decrease across
// calls for the same token, which keeps each postings list sorted.
// storedDocsCount seeds a new entry when documentID is 0 (query mode,
// where the count comes from the store); for real documents a new entry
// starts counting at 1.
func (b Buffer) Add(tokenID, documentID, position, storedDocsCount int) {
	entry, ok := b[tokenID]
	if !ok {
		docsCount := storedDocsCount
		if documentID > 0 {
			docsCount = 1
		}
		entry = &Entry{TokenID: tokenID, DocsCount: docsCount}
		b[tokenID] = entry
	}
	if len(entry.Postings) == 0 ||
		entry.Postings[len(entry.Postings)-1].DocumentID != documentID {
		entry.Postings = append(entry.Postings, postings.Posting{DocumentID: documentID})
		if ok && documentID > 0 {
			entry.DocsCount++
		}
	}
	last := &entry.Postings[len(entry.Postings)-1]
	last.Positions = append(last.Positions, position)
	entry.PositionsCount++
}

// Merge folds src into b and consumes it. Entries present on both sides
// get their postings lists spliced by ascending document id and their
// counters summed; the indexer must not feed the same document to both
// sides.
func (b Buffer) Merge(src Buffer) {
	for tokenID, entry := range src {
		if base, ok := b[tokenID]; ok {
			base.Postings = postings.Merge(base.Postings, entry.Postings)
			base.DocsCount += entry.DocsCount
			base.PositionsCount += entry.PositionsCount
		} else {
			b[tokenID] = entry
		}
		delete(src, tokenID)
	}
}

// Flush merges every entry with its persisted postings list, re-encodes
// and stores the result, and empties the buffer. Any fetch, decode or
// store failure aborts the flush so the surrounding transaction can
// roll back.
func (b Buffer) Flush(db database.Database, method postings.Method) error {
	totalDocs, err := db.GetDocumentCount()
	if err != nil {
		return err
	}
	for tokenID, entry := range b {
		old, oldCount, err := FetchPostings(db, method, tokenID)
		if err != nil {
			return fmt.Errorf("flush token %d: %w", tokenID, err)
		}
		if oldCount > 0 {
			entry.Postings = postings.Merge(old, entry.Postings)
			entry.DocsCount += oldCount
		}
		blob, err := postings.Encode(method, totalDocs, entry.Postings)
		if err != nil {
			return fmt.Errorf("flush token %d: %w", tokenID, err)
		}
		if err := db.UpdatePostings(tokenID, entry.DocsCount, blob); err != nil {
			return err
		}
		delete(b, tokenID)
	}
	return nil
}
