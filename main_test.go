package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oaiiae/addressbook/datastores"
)

func TestBookSQLiteWithSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	options := &Options{
		Database: filepath.Join(dir, "book.db"),
		Book:     filepath.Join(dir, "book.yaml"),
	}
	log := slog.New(slog.DiscardHandler)

	seed := datastores.NewContactsInmem(&datastores.Contact{Name: "Maria", Phones: []string{"0501234567"}})
	require.NoError(t, datastores.SaveFile(ctx, seed, options.Book))

	b, err := openBook(ctx, options, log)
	require.NoError(t, err)
	maria, err := b.Get(ctx, "Maria")
	require.NoError(t, err)
	assert.Equal(t, []string{"0501234567"}, maria.Phones)

	require.NoError(t, b.Add(ctx, &datastores.Contact{Name: "Mark", Phones: []string{"0679876543"}}))
	require.NoError(t, b.Close(ctx))

	saved := datastores.NewContactsInmem()
	n, err := datastores.LoadFile(ctx, saved, options.Book)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	db, err := datastores.OpenContactsSQLite(options.Database)
	require.NoError(t, err)
	defer db.Close()
	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestBookInmemWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	options := &Options{Book: filepath.Join(t.TempDir(), "book.yaml")}

	b, err := openBook(ctx, options, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	n, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, b.Add(ctx, &datastores.Contact{Name: "Maria"}))
	require.NoError(t, b.Close(ctx))
	_, err = os.Stat(options.Book)
	assert.NoError(t, err)

	b, err = openBook(ctx, &Options{}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.NoError(t, b.Close(ctx))
}

func TestBookInvalidSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contacts:\n  - name: Maria\n    phones: [\"123\"]\n"), 0o600))

	_, err := openBook(ctx, &Options{Book: path}, slog.New(slog.DiscardHandler))
	assert.ErrorIs(t, err, datastores.ErrInvalidValue)
}

func TestOptionsFlags(t *testing.T) {
	var got *Options
	cli := humacli.New(func(humacli.Hooks, *Options) {})
	cli.Root().AddCommand(&cobra.Command{
		Use: "check",
		Run: humacli.WithOptions(func(_ *cobra.Command, _ []string, options *Options) { got = options }),
	})
	cli.Root().SetArgs([]string{"check",
		"--port", "9999",
		"--read-header-timeout", "3s",
		"--level", "debug",
		"--database", "book.db",
	})
	require.NoError(t, cli.Root().Execute())

	require.NotNil(t, got)
	assert.Equal(t, "9999", got.Port)
	assert.Equal(t, 3*time.Second, got.ReadHeaderTimeout)
	assert.Equal(t, "/api", got.EndpointsPrefix)
	assert.Equal(t, "debug", got.Level)
	assert.Equal(t, "text", got.Format)
	assert.Equal(t, "book.db", got.Database)
	assert.Equal(t, 10, got.PageSize)
}
