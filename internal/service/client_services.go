package service

import (
	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
)

// ClientServices groups the client-side services.
type ClientServices struct {
	Coordinator   *Coordinator
	Live          *LiveMerger
	AuthService   ClientAuthService
	SearchService SearchService
	Remote        *RemoteService
}

func NewClientServices(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, listener adapter.PushListener, cfg *config.ClientConfig, logger *logger.Logger) *ClientServices {
	coordinator := NewCoordinator(serverAdapter, storages.CacheStore, cfg.Sync.PageSize, logger)
	live := NewLiveMerger(listener, coordinator, cfg.Workers.ReconnectInterval, logger)

	return &ClientServices{
		Coordinator:   coordinator,
		Live:          live,
		AuthService:   NewClientAuthService(storages.CacheStore, serverAdapter, coordinator, live, logger),
		SearchService: NewSearchService(coordinator, cfg.Workers.SearchDebounce, logger),
		Remote:        NewRemoteService(serverAdapter, logger),
	}
}

// Close stops the background activity of the client services.
func (s *ClientServices) Close() {
	s.SearchService.Stop()
	s.Live.Stop()
	s.Coordinator.Close()
}
