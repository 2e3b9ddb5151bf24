// Command rewrites mines command-template paraphrases from a parallel
// NL/command corpus into Postgres, and looks up rewrites interactively.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nlcmd/translator/internal/rewrite"
	"github.com/nlcmd/translator/pkg/config"
	"github.com/nlcmd/translator/pkg/logger"
	"github.com/nlcmd/translator/pkg/postgres"
	"github.com/nlcmd/translator/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	nlPath := flag.String("nl", "", "path to natural-language corpus (one sentence per line)")
	cmdPath := flag.String("commands", "", "path to command corpus (one command per line, aligned with -nl)")
	interactive := flag.Bool("interactive", false, "look up rewrites for commands read from stdin")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, "text")

	ctx := context.Background()
	var client *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{}, func() error {
		var connErr error
		client, connErr = postgres.New(cfg.Postgres)
		return connErr
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	store := rewrite.NewStore(client)
	if err := store.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure schema: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *interactive:
		if err := lookupLoop(ctx, store); err != nil {
			fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
			os.Exit(1)
		}
	case *nlPath != "" && *cmdPath != "":
		if err := mine(ctx, store, *nlPath, *cmdPath); err != nil {
			fmt.Fprintf(os.Stderr, "extraction failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "usage: rewrites -nl <file> -commands <file> | rewrites -interactive")
		os.Exit(2)
	}
}

func mine(ctx context.Context, store *rewrite.Store, nlPath, cmdPath string) error {
	nls, err := readLines(nlPath)
	if err != nil {
		return err
	}
	cmds, err := readLines(cmdPath)
	if err != nil {
		return err
	}
	if len(nls) != len(cmds) {
		return fmt.Errorf("corpus mismatch: %d sentences vs %d commands", len(nls), len(cmds))
	}

	corpus := make([]rewrite.Pair, len(nls))
	for i := range nls {
		corpus[i] = rewrite.Pair{NL: nls[i], Command: cmds[i]}
	}

	extractor := rewrite.NewExtractor(store)
	recorded, err := extractor.Extract(ctx, corpus)
	if err != nil {
		return err
	}
	fmt.Printf("recorded %d rewrite pairs from %d examples\n", recorded, len(corpus))
	return nil
}

func lookupLoop(ctx context.Context, store *rewrite.Store) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		command := strings.TrimSpace(scanner.Text())
		if command == "" {
			fmt.Print("> ")
			continue
		}
		template := rewrite.CommandTemplate(command)
		templates, err := store.Templates(ctx, template)
		if err != nil {
			return err
		}
		for i, t := range templates {
			fmt.Printf("rewrite %d: %s\n", i, t)
		}
		fmt.Print("> ")
	}
	return scanner.Err()
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
