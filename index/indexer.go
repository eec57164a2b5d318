package index

import (
	"log/slog"

	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/postings"
	"github.com/Wisteria30/SearchEngine/tokenizer"
	"github.com/Wisteria30/SearchEngine/util"
)

const (
	// DefaultNGram is the default N-gram width.
	DefaultNGram = 2
	// DefaultFlushThreshold is the buffered document count that, once
	// exceeded, triggers a flush of the inverted index buffer.
	DefaultFlushThreshold = 2048
)

// Indexer accepts documents, accumulates their postings in memory and
// flushes to the store past a document-count threshold. The caller owns
// the surrounding transaction.
type Indexer struct {
	db        database.Database
	method    postings.Method
	ngram     int
	threshold int

	buffer       Buffer
	bufferCount  int
	indexedCount int
}

func NewIndexer(db database.Database, method postings.Method, ngram, threshold int) *Indexer {
	return &Indexer{
		db:        db,
		method:    method,
		ngram:     ngram,
		threshold: threshold,
		buffer:    NewBuffer(),
	}
}

// AddDocument upserts the document row, tokenizes the body and buffers
// its postings. The buffer is flushed once more than the threshold
// number of documents has accumulated.
func (ix *Indexer) AddDocument(title, body string) error {
	documentID, err := ix.db.AddDocument(title, body)
	if err != nil {
		return err
	}

	body32, err := tokenizer.UTF8ToUTF32(body)
	if err != nil {
		return err
	}
	tokens, err := tokenizer.Split(body32, ix.ngram, false)
	if err != nil {
		return err
	}

	mini := NewBuffer()
	for _, token := range tokens {
		tokenID, _, err := ix.db.GetTokenID(token.Text, true)
		if err != nil {
			return err
		}
		mini.Add(tokenID, documentID, token.Position, 0)
	}
	ix.buffer.Merge(mini)
	ix.bufferCount++
	ix.indexedCount++
	slog.Info("indexed document", "count", ix.indexedCount, "title", title)

	if ix.bufferCount > ix.threshold {
		return ix.Flush()
	}
	return nil
}

// Flush writes all buffered postings through to the store.
func (ix *Indexer) Flush() error {
	if len(ix.buffer) == 0 {
		return nil
	}
	util.LogTimeDiff()
	if err := ix.buffer.Flush(ix.db, ix.method); err != nil {
		return err
	}
	ix.bufferCount = 0
	slog.Info("index flushed")
	util.LogTimeDiff()
	return nil
}

// IndexedCount returns how many documents this run has processed.
func (ix *Indexer) IndexedCount() int {
	return ix.indexedCount
}
