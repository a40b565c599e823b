package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/addressbook/cli/api"
	"github.com/oaiiae/addressbook/cli/logger"
	"github.com/oaiiae/addressbook/cli/repl"
	"github.com/oaiiae/addressbook/datastores"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	title    = "addressbook"
	version  = "dev"
	revision = "unknown"
	created  = "unknown"
)

// Options for the CLI. Pass flags such as `--port` or set `SERVICE_*` env vars.
type Options struct {
	api.ServerOptions
	api.RouterOptions
	logger.Options

	Database string `short:"d" doc:"sqlite database file, contacts are kept in memory when empty"`
	Book     string `short:"b" doc:"YAML snapshot loaded at start and saved at exit"`
	PageSize int    `          doc:"contacts per page for show all"                            default:"10"`
}

// book opens the configured store, loaded with the snapshot if any.
// Closing it saves the snapshot back.
type book struct {
	datastores.ContactsStore
	close func() error
	path  string
}

func openBook(ctx context.Context, options *Options, log *slog.Logger) (*book, error) {
	b := &book{path: options.Book, close: func() error { return nil }}
	if options.Database == "" {
		b.ContactsStore = datastores.NewContactsInmem()
	} else {
		store, err := datastores.OpenContactsSQLite(options.Database)
		if err != nil {
			return nil, err
		}
		b.ContactsStore, b.close = store, store.Close
	}
	if b.path != "" {
		n, err := datastores.LoadFile(ctx, b, b.path)
		if err != nil {
			return nil, errors.Join(err, b.close())
		}
		log.Info("address book loaded", "path", b.path, "contacts", n)
	}
	return b, nil
}

func (b *book) Close(ctx context.Context) error {
	var err error
	if b.path != "" {
		err = datastores.SaveFile(ctx, b, b.path)
	}
	return errors.Join(err, b.close())
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Options, os.Stdout)
		slog.SetDefault(log)

		var srv *http.Server
		var store *book
		hooks.OnStart(func() {
			var err error
			store, err = openBook(context.Background(), options, log)
			if err != nil {
				log.Error("could not open address book", "err", err)
				os.Exit(1)
			}
			srv = api.NewServer(&options.ServerOptions, api.NewRouter(&options.RouterOptions,
				title, version, revision, created, log, store,
			), log)

			err = srv.ListenAndServe()
			if err != http.ErrServerClosed {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if srv != nil {
				if err := srv.Shutdown(ctx); err != nil {
					log.Warn("could not shutdown the server", "err", err)
				}
			}
			if store != nil {
				if err := store.Close(ctx); err != nil {
					log.Warn("could not close address book", "err", err)
				}
			}
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "repl",
		Short: "Manage the address book with text commands",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *Options) {
			log := logger.New(&options.Options, os.Stderr)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			store, err := openBook(ctx, options, log)
			if err != nil {
				log.Error("could not open address book", "err", err)
				os.Exit(1)
			}
			session := &repl.Session{Store: store, PageSize: options.PageSize, Logger: log}
			if err := session.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("repl stopped", "err", err)
			}
			if err := store.Close(context.WithoutCancel(ctx)); err != nil {
				log.Error("could not save address book", "err", err)
				os.Exit(1)
			}
		}),
	})

	cli.Run()
}
