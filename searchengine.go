// Package searchengine wires the N-gram indexer and the query
// evaluator over a SQL-backed inverted index. The per-backend commands
// under cmd/ parse flags, open their database and call Run.
package searchengine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"

	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/index"
	"github.com/Wisteria30/SearchEngine/loader"
	"github.com/Wisteria30/SearchEngine/postings"
	"github.com/Wisteria30/SearchEngine/search"
	"github.com/Wisteria30/SearchEngine/util"
)

// Options drives one invocation. DumpPath selects index mode, Query
// search mode; both may be set and then indexing runs first.
type Options struct {
	Compress       string
	DumpPath       string
	Query          string
	MaxDocuments   int
	FlushThreshold int
	NGram          int
	DisablePhrase  bool
	DumpToken      string
}

const settingCompressMethod = "compress_method"

// Main flow shared by sqlite3fts, mysqlfts and psqlfts.
func Run(db database.Database, options *Options) error {
	util.LogTimeDiff()

	if options.DumpPath != "" {
		if err := runIndex(db, options); err != nil {
			return err
		}
	}
	if options.Query != "" {
		if err := runSearch(db, options); err != nil {
			return err
		}
	}
	if options.DumpToken != "" {
		if err := runDumpToken(db, options); err != nil {
			return err
		}
	}

	util.LogTimeDiff()
	return nil
}

// parseCompressMethod interprets the user's or the stored compress
// method name. Anything unrecognized falls back to golomb with a
// warning, matching the indexing default.
func parseCompressMethod(name string) postings.Method {
	switch name {
	case "", "golomb":
		return postings.Golomb
	case "none":
		return postings.None
	default:
		slog.Warn("invalid compress method, using golomb instead", "method", name)
		return postings.Golomb
	}
}

// runIndex ingests the dump inside a single transaction. The compress
// method is pinned in settings before the transaction starts so a
// later search selects the matching decoder.
func runIndex(db database.Database, options *Options) error {
	method := parseCompressMethod(options.Compress)
	if err := db.ReplaceSetting(settingCompressMethod, method.String()); err != nil {
		return err
	}
	util.LogSystemMemory()

	indexer := index.NewIndexer(db, method, options.NGram, options.FlushThreshold)
	if err := db.Begin(); err != nil {
		return err
	}
	err := loader.Load(options.DumpPath, options.MaxDocuments, indexer.AddDocument)
	if err == nil {
		err = indexer.Flush()
	}
	if err != nil {
		db.Rollback()
		return err
	}
	return db.Commit()
}

func runSearch(db database.Database, options *Options) error {
	methodName, err := db.GetSetting(settingCompressMethod)
	if err != nil {
		return err
	}
	method := parseCompressMethod(methodName)

	searcher := search.NewSearcher(db, method, options.NGram, !options.DisablePhrase)
	results, err := searcher.Search(options.Query)
	if err != nil {
		if !errors.Is(err, search.ErrQueryTooShort) {
			return err
		}
		slog.Error("too short query", "query", options.Query)
	}
	return printResults(db, results)
}

var (
	titleColor = color.New(color.FgCyan)
	scoreColor = color.New(color.FgYellow)
)

func printResults(db database.Database, results []search.Result) error {
	for _, r := range results {
		title, err := db.GetDocumentTitle(r.DocumentID)
		if err != nil {
			return err
		}
		fmt.Printf("document_id: %d title: %s score: %s\n",
			r.DocumentID, titleColor.Sprint(title), scoreColor.Sprintf("%f", r.Score))
	}
	fmt.Printf("Total %d documents are found!\n", len(results))
	return nil
}

// runDumpToken pretty-prints the decoded postings list of one token.
func runDumpToken(db database.Database, options *Options) error {
	tokenID, docsCount, err := db.GetTokenID(options.DumpToken, false)
	if err != nil {
		return err
	}
	if tokenID == 0 {
		slog.Warn("token is not indexed", "token", options.DumpToken)
		return nil
	}
	methodName, err := db.GetSetting(settingCompressMethod)
	if err != nil {
		return err
	}
	list, _, err := index.FetchPostings(db, parseCompressMethod(methodName), tokenID)
	if err != nil {
		return err
	}
	fmt.Printf("token: %s (id: %d, docs_count: %d)\n", options.DumpToken, tokenID, docsCount)
	postings.Dump(list)
	return nil
}
