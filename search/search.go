// Package search evaluates free-text queries against a stored index.
package search

import (
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/index"
	"github.com/Wisteria30/SearchEngine/postings"
	"github.com/Wisteria30/SearchEngine/tokenizer"
)

// ErrQueryTooShort reports a query with fewer characters than the
// N-gram width; such a query cannot match any indexed token.
var ErrQueryTooShort = errors.New("query is shorter than the N-gram width")

// Result is one matched document with its TF-IDF score.
type Result struct {
	DocumentID int
	Score      float64
}

// Searcher runs positional intersection over persisted postings lists,
// with an optional phrase check, and ranks matches by TF-IDF.
type Searcher struct {
	db     database.Database
	method postings.Method
	ngram  int
	phrase bool
}

func NewSearcher(db database.Database, method postings.Method, ngram int, phrase bool) *Searcher {
	return &Searcher{db: db, method: method, ngram: ngram, phrase: phrase}
}

// docCursor walks one token's decoded postings list during the
// document intersection.
type docCursor struct {
	list postings.List
	pos  int
}

func (c *docCursor) current() *postings.Posting {
	if c.pos >= len(c.list) {
		return nil
	}
	return &c.list[c.pos]
}

// Search tokenizes the query, intersects the postings lists of all
// query tokens and returns matches ordered by descending score.
func (s *Searcher) Search(query string) ([]Result, error) {
	query32, err := tokenizer.UTF8ToUTF32(query)
	if err != nil {
		return nil, err
	}
	if len(query32) < s.ngram {
		return nil, ErrQueryTooShort
	}

	tokens, err := tokenizer.Split(query32, s.ngram, true)
	if err != nil {
		return nil, err
	}

	// Build the per-query mini-index: token id -> positions within the
	// query. Resolution must never insert unknown tokens.
	buffer := index.NewBuffer()
	for _, token := range tokens {
		tokenID, docsCount, err := s.db.GetTokenID(token.Text, false)
		if err != nil {
			return nil, err
		}
		buffer.Add(tokenID, 0, token.Position, docsCount)
	}
	if len(buffer) == 0 {
		return nil, nil
	}

	entries := make([]*index.Entry, 0, len(buffer))
	for _, entry := range buffer {
		entries = append(entries, entry)
	}
	// Rarest token first: its postings list drives the intersection.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DocsCount < entries[j].DocsCount
	})

	indexedCount, err := s.db.GetDocumentCount()
	if err != nil {
		return nil, err
	}

	cursors := make([]docCursor, len(entries))
	for i, entry := range entries {
		if entry.TokenID == 0 {
			// The token never occurred in any indexed document.
			return nil, nil
		}
		list, _, err := index.FetchPostings(s.db, s.method, entry.TokenID)
		if err != nil {
			slog.Error("decode postings error", "token_id", entry.TokenID, "error", err)
			return nil, nil
		}
		if len(list) == 0 {
			return nil, nil
		}
		cursors[i] = docCursor{list: list}
	}

	scores := make(map[int]float64)
intersect:
	for cursors[0].current() != nil {
		documentID := cursors[0].current().DocumentID
		nextDocumentID := 0
		for i := 1; i < len(cursors); i++ {
			cur := &cursors[i]
			for cur.current() != nil && cur.current().DocumentID < documentID {
				cur.pos++
			}
			if cur.current() == nil {
				break intersect
			}
			if cur.current().DocumentID != documentID {
				nextDocumentID = cur.current().DocumentID
				break
			}
		}
		if nextDocumentID > 0 {
			for cursors[0].current() != nil &&
				cursors[0].current().DocumentID < nextDocumentID {
				cursors[0].pos++
			}
			continue
		}
		phraseCount := -1
		if s.phrase {
			phraseCount = searchPhrase(entries, cursors)
		}
		if phraseCount != 0 {
			scores[documentID] += calcTFIDF(entries, cursors, indexedCount)
		}
		cursors[0].pos++
	}

	results := make([]Result, 0, len(scores))
	for documentID, score := range scores {
		results = append(results, Result{DocumentID: documentID, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	return results, nil
}

// phraseCursor tracks one occurrence of a query token: base is the
// token's position inside the query, positions the token's positions
// in the current document.
type phraseCursor struct {
	base      int
	positions []int
	idx       int
}

func (c *phraseCursor) exhausted() bool {
	return c.idx >= len(c.positions)
}

func (c *phraseCursor) rel() int {
	return c.positions[c.idx] - c.base
}

// searchPhrase counts positions where every query token occurs in the
// document at the same offset relative to its position in the query.
// All cursors stand on the same document when this is called.
func searchPhrase(entries []*index.Entry, cursors []docCursor) int {
	var subCursors []phraseCursor
	for i, entry := range entries {
		// The mini-index entry holds a single posting with the token's
		// positions inside the query.
		for _, queryPosition := range entry.Postings[0].Positions {
			subCursors = append(subCursors, phraseCursor{
				base:      queryPosition,
				positions: cursors[i].current().Positions,
			})
		}
	}

	phraseCount := 0
	pivot := &subCursors[0]
	for !pivot.exhausted() {
		rel := pivot.rel()
		nextRel := rel
		for i := 1; i < len(subCursors); i++ {
			cur := &subCursors[i]
			for !cur.exhausted() && cur.rel() < rel {
				cur.idx++
			}
			if cur.exhausted() {
				return phraseCount
			}
			if cur.rel() != rel {
				nextRel = cur.rel()
				break
			}
		}
		if nextRel > rel {
			for !pivot.exhausted() && pivot.rel() < nextRel {
				pivot.idx++
			}
		} else {
			phraseCount++
			pivot.idx++
		}
	}
	return phraseCount
}

// calcTFIDF scores the document all cursors currently agree on:
// sum over query tokens of tf * log2(indexed / docs_count).
func calcTFIDF(entries []*index.Entry, cursors []docCursor, indexedCount int) float64 {
	score := 0.0
	for i, entry := range entries {
		idf := math.Log2(float64(indexedCount) / float64(entry.DocsCount))
		score += float64(len(cursors[i].current().Positions)) * idf
	}
	return score
}
