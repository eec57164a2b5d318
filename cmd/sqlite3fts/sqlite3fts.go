package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	searchengine "github.com/Wisteria30/SearchEngine"
	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/database/sqlite3"
	"github.com/Wisteria30/SearchEngine/index"
	"github.com/Wisteria30/SearchEngine/util"
)

var version string

// Return parsed options and database config
func parseOptions(args []string) (database.Config, *searchengine.Options) {
	var opts struct {
		Compress       string `short:"c" long:"compress" description:"Compress method for postings lists (none, golomb)" value-name:"method"`
		IndexDump      string `short:"x" long:"index" description:"Dump xml path for indexing" value-name:"xml_path"`
		Query          string `short:"q" long:"query" description:"Query for search" value-name:"query"`
		MaxDocuments   int    `short:"m" long:"max-documents" description:"Max count of documents to index" value-name:"count"`
		FlushThreshold int    `short:"t" long:"flush-threshold" description:"Inverted index buffer merge threshold" value-name:"count"`
		NoPhrase       bool   `short:"s" long:"no-phrase" description:"Don't use token positions for search"`
		DumpToken      string `long:"dump-token" description:"Pretty-print the postings list of a token" value-name:"token"`
		Config         string `long:"config" description:"YAML file to specify: n_gram, flush_threshold, compress, max_documents"`
		Help           bool   `long:"help" description:"Show this help"`
		Version        bool   `long:"version" description:"Show this version"`
	}

	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options] db_file"
	args, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	if len(args) == 0 {
		fmt.Print("No database file is specified!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(-1)
	} else if len(args) > 1 {
		fmt.Printf("Multiple database files are given: %v\n\n", args)
		parser.WriteHelp(os.Stdout)
		os.Exit(-1)
	}

	config := database.Config{
		DbName: args[0],
	}
	options := buildOptions(database.ParseIndexerConfig(opts.Config),
		opts.Compress, opts.IndexDump, opts.Query, opts.DumpToken,
		opts.MaxDocuments, opts.FlushThreshold, opts.NoPhrase)
	return config, options
}

// buildOptions layers command-line flags over the optional YAML config
// and the built-in defaults.
func buildOptions(fileConfig database.IndexerConfig,
	compress, indexDump, query, dumpToken string,
	maxDocuments, flushThreshold int, noPhrase bool) *searchengine.Options {

	if compress == "" {
		compress = fileConfig.Compress
	}
	if flushThreshold == 0 {
		flushThreshold = fileConfig.FlushThreshold
	}
	if flushThreshold == 0 {
		flushThreshold = index.DefaultFlushThreshold
	}
	if maxDocuments == 0 {
		maxDocuments = fileConfig.MaxDocuments
	}
	if maxDocuments == 0 {
		maxDocuments = -1 // unlimited
	}
	ngram := fileConfig.NGram
	if ngram == 0 {
		ngram = index.DefaultNGram
	}

	return &searchengine.Options{
		Compress:       compress,
		DumpPath:       indexDump,
		Query:          query,
		MaxDocuments:   maxDocuments,
		FlushThreshold: flushThreshold,
		NGram:          ngram,
		DisablePhrase:  noPhrase,
		DumpToken:      dumpToken,
	}
}

func main() {
	util.InitSlog()
	config, options := parseOptions(os.Args[1:])

	// Refuse to index over an existing database file.
	if options.DumpPath != "" {
		if _, err := os.Stat(config.DbName); err == nil {
			fmt.Printf("%s already exists.\n", config.DbName)
			os.Exit(-2)
		}
	}

	db, err := sqlite3.NewDatabase(config)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := searchengine.Run(db, options); err != nil {
		log.Fatal(err)
	}
}
