// Package main manages the known-rugger registry.
//
// Usage:
//
//	ruggers add <wallet> [--note "..."]
//	ruggers remove <wallet>
//	ruggers list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"sol-memebot/internal/config"
	"sol-memebot/internal/domain"
	"sol-memebot/internal/solana"
	"sol-memebot/internal/storage"
	pgstore "sol-memebot/internal/storage/postgres"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		usage()
		return errors.New("missing command")
	}
	cmd, args := args[0], args[1:]

	opts, err := parseArgs(cmd, args, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if opts.postgresDSN == "" {
		return errors.New("--postgres-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := pgstore.NewRuggerStore(pool)

	switch cmd {
	case "add":
		wallet, err := opts.wallet()
		if err != nil {
			return err
		}
		if err := store.Add(ctx, &domain.Rugger{Wallet: wallet, Note: opts.note}); err != nil {
			return err
		}
		fmt.Printf("Flagged %s\n", wallet)

	case "remove":
		wallet, err := opts.wallet()
		if err != nil {
			return err
		}
		if err := store.Remove(ctx, wallet); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s is not flagged", wallet)
			}
			return err
		}
		fmt.Printf("Unflagged %s\n", wallet)

	case "list":
		ruggers, err := store.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WALLET\tADDED\tNOTE")
		for _, r := range ruggers {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Wallet, r.AddedAt.UTC().Format(time.RFC3339), r.Note)
		}
		return w.Flush()

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

type options struct {
	postgresDSN string
	note        string
	positional  []string
}

// parseArgs parses the flags of a subcommand. Flags may appear before or
// after the wallet argument.
func parseArgs(cmd string, args []string, defaultDSN string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&opts.postgresDSN, "postgres-dsn", defaultDSN, "PostgreSQL connection string")
	fs.StringVar(&opts.note, "note", "", "Free-form note (add only)")

	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return opts, nil
		}
		opts.positional = append(opts.positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// wallet returns the single positional wallet argument.
func (o *options) wallet() (string, error) {
	if len(o.positional) != 1 {
		return "", errors.New("expected exactly one wallet address")
	}
	wallet := o.positional[0]
	if !solana.IsValidAddress(wallet) {
		return "", fmt.Errorf("%w: %s", solana.ErrInvalidAddress, wallet)
	}
	return wallet, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ruggers <add|remove|list> [--postgres-dsn DSN] [--note NOTE] [wallet]")
}
