package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/eventboard/eventboard-server/internal/category"
	"github.com/eventboard/eventboard-server/internal/config"
	"github.com/eventboard/eventboard-server/internal/id"
	"github.com/eventboard/eventboard-server/internal/logger"
	"github.com/eventboard/eventboard-server/internal/service"
)

// ProvideEventService provides the event service, loaded from storage
// and with the search index brought in step with it.
func ProvideEventService(i do.Injector) (*service.EventService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	categories, err := category.NewIndex(cfg.Category.Locale)
	if err != nil {
		return nil, err
	}

	var indexer service.SearchIndexer = service.NoopIndexer{}
	if searchHandle.SearchIndex != nil {
		indexer = searchHandle.SearchIndex
	}

	svc := service.NewEventService(
		storeHandle.Store,
		id.NewClockSequence(time.Now),
		categories,
		indexer,
		sseHandle.Manager,
		log.Component("events"),
	)

	snap := svc.Load(context.Background())

	if searchHandle.SearchIndex != nil {
		rebuilt, err := searchHandle.Sync(snap.Events)
		if err != nil {
			// Search falls behind but the board still works.
			log.Warn("Failed to sync search index", "error", err)
		} else if rebuilt {
			log.Info("Search index rebuilt", "events", len(snap.Events))
		}
	}

	return svc, nil
}
