// ghnotif is a terminal client for the GitHub notification inbox.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ghnotif/internal/app"
	"github.com/nhle/ghnotif/internal/cache"
	"github.com/nhle/ghnotif/internal/credential"
	"github.com/nhle/ghnotif/internal/httpcache"
	"github.com/nhle/ghnotif/internal/model"
	"github.com/nhle/ghnotif/internal/pipeline"
	"github.com/nhle/ghnotif/internal/remote"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ghnotif: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Conditional-request cache; the app degrades gracefully without it.
	var store *httpcache.Store
	if cfg.Cache.Enabled {
		store, err = httpcache.Open(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ghnotif: response cache unavailable: %v\n", err)
		} else {
			defer store.Close()
			if _, err := store.Purge(context.Background(), cfg.Cache.MaxAge); err != nil {
				fmt.Fprintf(os.Stderr, "ghnotif: pruning response cache: %v\n", err)
			}
		}
	}

	// An empty token is not fatal: the app opens first-run setup.
	token := credential.Token()

	newWorker := func(token string) *pipeline.Worker {
		opts := []remote.Option{}
		if store != nil {
			opts = append(opts, remote.WithCache(store))
		}
		client := remote.NewClient(cfg.Sync.BaseURL, token, opts...)

		fetcher := remote.NewFetcher(client, cfg.Sync.PageSize, cfg.Sync.MaxConcurrency)
		resolver := remote.NewResolver(client)
		hydrator := remote.NewHydrator(resolver, cfg.Sync.MaxConcurrency)

		return pipeline.New(client, fetcher, resolver, hydrator, cache.New())
	}

	program := tea.NewProgram(
		app.New(token, newWorker),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
