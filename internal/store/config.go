package store

import (
	"context"

	"github.com/alextreichler/spiritflow/internal/metrics"
	"github.com/alextreichler/spiritflow/internal/models"
)

// UpdateConfig merges patch into the singleton store config.
func (s *Store) UpdateConfig(ctx context.Context, patch models.ConfigPatch) models.StoreConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	metrics.StoreMutations.WithLabelValues("update_config").Inc()

	patch.Apply(&s.config)
	s.persist(ctx, KeyConfig, s.config)
	return s.config
}

func (s *Store) Config() models.StoreConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}
