package main

import (
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	searchengine "github.com/Wisteria30/SearchEngine"
	"github.com/Wisteria30/SearchEngine/database"
	"github.com/Wisteria30/SearchEngine/database/postgres"
	"github.com/Wisteria30/SearchEngine/index"
	"github.com/Wisteria30/SearchEngine/util"
)

var version string

// Return parsed options and database config
func parseOptions(args []string) (database.Config, *searchengine.Options) {
	var opts struct {
		User           string `short:"U" long:"user" description:"PostgreSQL user name" value-name:"user_name" default:"postgres"`
		Password       string `short:"W" long:"password" description:"PostgreSQL user password, overridden by $PGPASSWORD" value-name:"password"`
		Host           string `short:"h" long:"host" description:"Host or socket directory to connect to the PostgreSQL server" value-name:"host_name" default:"127.0.0.1"`
		Port           uint   `short:"p" long:"port" description:"Port used for the connection" value-name:"port_num" default:"5432"`
		Prompt         bool   `long:"password-prompt" description:"Force PostgreSQL user password prompt"`
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
	parser.Usage = "[options] db_name"
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
		fmt.Print("No database is specified!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(-1)
	} else if len(args) > 1 {
		fmt.Printf("Multiple databases are given: %v\n\n", args)
		parser.WriteHelp(os.Stdout)
		os.Exit(-1)
	}

	password, ok := os.LookupEnv("PGPASSWORD")
	if !ok {
		password = opts.Password
	}

	if opts.Prompt {
		fmt.Printf("Enter Password: ")
		pass, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			log.Fatal(err)
		}
		password = string(pass)
	}

	config := database.Config{
		DbName:   args[0],
		User:     opts.User,
		Password: password,
		Host:     opts.Host,
		Port:     int(opts.Port),
	}
	// A host that names an existing directory is a Unix socket directory.
	if _, err := os.Stat(config.Host); err == nil {
		config.Socket = config.Host
	}

	fileConfig := database.ParseIndexerConfig(opts.Config)
	if opts.Compress == "" {
		opts.Compress = fileConfig.Compress
	}
	if opts.FlushThreshold == 0 {
		opts.FlushThreshold = fileConfig.FlushThreshold
	}
	if opts.FlushThreshold == 0 {
		opts.FlushThreshold = index.DefaultFlushThreshold
	}
	if opts.MaxDocuments == 0 {
		opts.MaxDocuments = fileConfig.MaxDocuments
	}
	if opts.MaxDocuments == 0 {
		opts.MaxDocuments = -1 // unlimited
	}
	ngram := fileConfig.NGram
	if ngram == 0 {
		ngram = index.DefaultNGram
	}

	options := &searchengine.Options{
		Compress:       opts.Compress,
		DumpPath:       opts.IndexDump,
		Query:          opts.Query,
		MaxDocuments:   opts.MaxDocuments,
		FlushThreshold: opts.FlushThreshold,
		NGram:          ngram,
		DisablePhrase:  opts.NoPhrase,
		DumpToken:      opts.DumpToken,
	}
	return config, options
}

func main() {
	util.InitSlog()
	config, options := parseOptions(os.Args[1:])

	db, err := postgres.NewDatabase(config)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := searchengine.Run(db, options); err != nil {
		log.Fatal(err)
	}
}
