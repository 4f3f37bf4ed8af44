// Package main prints the records held by the configured storage backend.
//
// Usage:
//
//	STORAGE_BACKEND=badger go run ./cmd/dbinspect
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/eventboard/eventboard-server/internal/config"
	"github.com/eventboard/eventboard-server/internal/di/providers"
	"github.com/eventboard/eventboard-server/internal/domain"
	"github.com/eventboard/eventboard-server/internal/logger"
	"github.com/eventboard/eventboard-server/internal/store"
)

func main() {
	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	backend, err := providers.OpenBackend(cfg.Storage, logger.Discard().Logger)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", cfg.Storage.Backend, err)
	}
	defer backend.Close()

	ctx := context.Background()

	fmt.Println("=== Storage Inspection ===")
	fmt.Printf("Backend: %s\n", cfg.Storage.Backend)
	fmt.Println()

	for _, key := range store.Keys() {
		raw, err := backend.Get(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("[%s] absent\n\n", key)
			continue
		}
		if err != nil {
			fmt.Printf("[%s] read failed: %v\n\n", key, err)
			continue
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			fmt.Printf("[%s] not valid JSON (%d bytes): %v\n\n", key, len(raw), err)
			continue
		}
		fmt.Printf("[%s] %d bytes\n%s\n\n", key, len(raw), pretty.String())
	}

	// Summary the service would load
	st := store.New(backend, store.Options{})
	events := st.LoadEvents(ctx)
	bookmarks := st.LoadBookmarks(ctx)

	byID := domain.IndexByID(events)
	dangling := 0
	for _, bid := range bookmarks {
		if _, ok := byID[bid]; !ok {
			dangling++
		}
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Events:             %d\n", len(events))
	fmt.Printf("Highest id:         %d\n", domain.MaxID(events))
	fmt.Printf("Bookmarks:          %d\n", len(bookmarks))
	fmt.Printf("Dangling bookmarks: %d\n", dangling)
}
