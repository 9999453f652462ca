package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// RemoteService answers the client's read-only questions to the server that
// bypass the cache: the full collection export and the server description.
type RemoteService struct {
	adapter adapter.ServerAdapter
	logger  *logger.Logger
}

var (
	_ ExportService     = (*RemoteService)(nil)
	_ ServerInfoService = (*RemoteService)(nil)
)

func NewRemoteService(serverAdapter adapter.ServerAdapter, logger *logger.Logger) *RemoteService {
	return &RemoteService{adapter: serverAdapter, logger: logger}
}

// Export returns the server's records ordered by title.
func (s *RemoteService) Export(ctx context.Context) ([]byte, int, error) {
	if s.adapter.Token() == "" {
		return nil, 0, ErrNoSession
	}

	records, err := s.adapter.ListRecords(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "RemoteService.Export").Msg("list records failed")
		return nil, 0, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Title < records[j].Title
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("encode export: %w", err)
	}
	return data, len(records), nil
}

func (s *RemoteService) ServerInfo(ctx context.Context) (models.ServerInfo, error) {
	info, err := s.adapter.ServerInfo(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Str("func", "RemoteService.ServerInfo").Msg("server info unavailable")
		return models.ServerInfo{}, err
	}
	return info, nil
}
