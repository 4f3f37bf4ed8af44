package search

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/eventboard/eventboard-server/internal/domain"
)

// SearchIndex wraps a Bleve index of events.
//
// All public methods are safe for concurrent use. The mutex guards the
// index handle, which Rebuild swaps out.
type SearchIndex struct {
	index   bleve.Index
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	created bool
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch with the version file on disk forces a rebuild on startup.
const mappingVersion = "1"

const batchSize = 500

// NewSearchIndex creates or opens the search index under opts.DataPath.
// An index that is corrupted or carries an outdated mapping is removed
// and recreated empty. Call Sync afterwards to fill it.
func NewSearchIndex(opts Options) (*SearchIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(opts.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search dir: %w", err)
	}

	indexPath := filepath.Join(opts.DataPath, "search.bleve")
	versionPath := filepath.Join(opts.DataPath, "search.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil {
			logger.Info("search index has no version file, will rebuild",
				"new_version", mappingVersion,
			)
			needsRebuild = true
		} else if string(existingVersion) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	created := false
	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		created = true
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &SearchIndex{
		index:   index,
		path:    indexPath,
		logger:  logger,
		created: created,
	}, nil
}

// NewMemoryIndex creates an index that lives only in memory.
func NewMemoryIndex(logger *slog.Logger) (*SearchIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create memory index: %w", err)
	}
	return &SearchIndex{index: index, logger: logger, created: true}, nil
}

// Close closes the index and releases resources.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexEvent adds or replaces a single event.
func (s *SearchIndex) IndexEvent(e domain.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc := NewEventDocument(e)
	return s.index.Index(doc.ID, doc.ToMap())
}

// IndexEvents indexes events in batches of batchSize.
func (s *SearchIndex) IndexEvents(events []domain.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexBatches(s.index, events)
}

// DeleteEvent removes an event from the index. Unknown ids are ignored.
func (s *SearchIndex) DeleteEvent(eventID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(DocID(eventID))
}

// DocumentCount returns the total number of indexed documents.
func (s *SearchIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild replaces the index contents with events.
//
// This takes the exclusive lock and blocks searches until it finishes.
func (s *SearchIndex) Rebuild(events []domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh bleve.Index
	var err error
	if s.path == "" {
		fresh, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		if closeErr := s.index.Close(); closeErr != nil {
			s.logger.Warn("failed to close previous index", "error", closeErr)
		}
	} else {
		if err := s.index.Close(); err != nil {
			return fmt.Errorf("close index: %w", err)
		}
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		fresh, err = bleve.New(s.path, buildIndexMapping())
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	s.index = fresh

	if err := indexBatches(fresh, events); err != nil {
		return err
	}
	s.logger.Info("rebuilt search index", "path", s.path, "events", len(events))
	return nil
}

// Sync rebuilds the index when it was just created or its document
// count disagrees with events. It reports whether a rebuild ran.
func (s *SearchIndex) Sync(events []domain.Event) (bool, error) {
	s.mu.RLock()
	created := s.created
	count, err := s.index.DocCount()
	s.mu.RUnlock()
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}

	if !created && count == uint64(len(events)) {
		return false, nil
	}

	s.logger.Info("search index out of sync, rebuilding",
		"indexed", count,
		"events", len(events),
	)
	if err := s.Rebuild(events); err != nil {
		return false, err
	}

	s.mu.Lock()
	s.created = false
	s.mu.Unlock()
	return true, nil
}

func indexBatches(index bleve.Index, events []domain.Event) error {
	for i := 0; i < len(events); i += batchSize {
		end := min(i+batchSize, len(events))

		batch := index.NewBatch()
		for _, e := range events[i:end] {
			doc := NewEventDocument(e)
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}

		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}
