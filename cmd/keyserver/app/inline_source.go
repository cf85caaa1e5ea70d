package app

import (
	"context"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

// inlineSource adapts seed records written directly in the config tree.
type inlineSource struct {
	seeds []configs.SeedConfig
}

func (s inlineSource) Load(context.Context) ([]domain.KeyRecord, error) {
	recs := make([]domain.KeyRecord, 0, len(s.seeds))
	for _, sc := range s.seeds {
		recs = append(recs, domain.KeyRecord{
			Service:     domain.ServiceID(sc.Service),
			Key:         sc.Key,
			Provider:    sc.Provider,
			Description: sc.Description,
		})
	}
	return recs, nil
}
