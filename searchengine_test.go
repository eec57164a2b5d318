package searchengine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/database/sqlite3"
	"github.com/Wisteria30/SearchEngine/index"
	"github.com/Wisteria30/SearchEngine/search"
)

type page struct {
	title, body string
}

func writeDump(t *testing.T, pages []page) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("<mediawiki>\n")
	for _, p := range pages {
		fmt.Fprintf(&sb, "<page><title>%s</title><revision><text>%s</text></revision></page>\n",
			p.title, p.body)
	}
	sb.WriteString("</mediawiki>\n")

	path := filepath.Join(t.TempDir(), "dump.xml")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))
	return path
}

// indexPages builds a fresh sqlite-backed index over the pages and
// returns the open database.
func indexPages(t *testing.T, compress string, pages []page) database.Database {
	t.Helper()
	db, err := sqlite3.NewDatabase(database.Config{
		DbName: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	options := &Options{
		Compress:       compress,
		DumpPath:       writeDump(t, pages),
		MaxDocuments:   -1,
		FlushThreshold: index.DefaultFlushThreshold,
		NGram:          index.DefaultNGram,
	}
	require.NoError(t, Run(db, options))
	return db
}

func searchFor(t *testing.T, db database.Database, query string, phrase bool) []search.Result {
	t.Helper()
	methodName, err := db.GetSetting("compress_method")
	require.NoError(t, err)
	searcher := search.NewSearcher(db, parseCompressMethod(methodName), index.DefaultNGram, phrase)
	results, err := searcher.Search(query)
	require.NoError(t, err)
	return results
}

func TestEndToEndSearch(t *testing.T) {
	db := indexPages(t, "golomb", []page{
		{title: "a", body: "hello world"},
		{title: "b", body: "goodbye moon"},
	})

	results := searchFor(t, db, "hello", true)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].DocumentID)
	assert.Greater(t, results[0].Score, 0.0)

	title, err := db.GetDocumentTitle(results[0].DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "a", title)
}

func TestEndToEndRanking(t *testing.T) {
	db := indexPages(t, "golomb", []page{
		{title: "a", body: "abc"},
		{title: "b", body: "abcd"},
	})

	results := searchFor(t, db, "bc", true)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].DocumentID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestEndToEndPhrase(t *testing.T) {
	db := indexPages(t, "golomb", []page{
		{title: "a", body: "the quick brown fox"},
	})

	assert.Len(t, searchFor(t, db, "quick brown", true), 1)
	assert.Len(t, searchFor(t, db, "brown quick", true), 0)
	assert.Len(t, searchFor(t, db, "brown quick", false), 1)
}

func TestEndToEndJapanesePunctuation(t *testing.T) {
	db := indexPages(t, "golomb", []page{
		{title: "a", body: "東京、京都"},
	})

	// N-grams never cross the punctuation mark.
	for _, token := range []string{"東京", "京都"} {
		id, _, err := db.GetTokenID(token, false)
		require.NoError(t, err)
		assert.NotZero(t, id, "token %q should be indexed", token)
	}
	for _, token := range []string{"京、", "、京"} {
		id, _, err := db.GetTokenID(token, false)
		require.NoError(t, err)
		assert.Zero(t, id, "token %q should not be indexed", token)
	}

	assert.Len(t, searchFor(t, db, "東京", true), 1)
	assert.Len(t, searchFor(t, db, "京都", true), 1)
}

func TestEndToEndNoneCodec(t *testing.T) {
	db := indexPages(t, "none", []page{
		{title: "a", body: "hello world"},
		{title: "b", body: "goodbye moon"},
	})

	method, err := db.GetSetting("compress_method")
	require.NoError(t, err)
	assert.Equal(t, "none", method)

	results := searchFor(t, db, "hello world", true)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].DocumentID)
}

func TestEndToEndCompressMethodPinned(t *testing.T) {
	db := indexPages(t, "", []page{{title: "a", body: "hello"}})
	method, err := db.GetSetting("compress_method")
	require.NoError(t, err)
	assert.Equal(t, "golomb", method)
}

func TestEndToEndReindexSameTitle(t *testing.T) {
	// The same title appears twice: the body is replaced in place but
	// the postings of the first body stay behind.
	db := indexPages(t, "golomb", []page{
		{title: "a", body: "abc"},
		{title: "a", body: "xyz"},
	})

	id, err := db.GetDocumentID("a")
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	count, err := db.GetDocumentCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var body string
	err = db.DB().QueryRow(`SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	require.NoError(t, err)
	assert.Equal(t, "xyz", body)

	// Stale postings from the old body still match.
	assert.Len(t, searchFor(t, db, "xyz", true), 1)
	assert.Len(t, searchFor(t, db, "abc", true), 1)
}

func TestEndToEndQueryTooShort(t *testing.T) {
	db := indexPages(t, "golomb", []page{{title: "a", body: "hello"}})

	searcher := search.NewSearcher(db, parseCompressMethod("golomb"), index.DefaultNGram, true)
	_, err := searcher.Search("h")
	assert.ErrorIs(t, err, search.ErrQueryTooShort)
}
