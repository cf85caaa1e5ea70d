package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"

	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
)

// VaultSource reads the seed set from a HashiCorp Vault KV v2 secret whose
// data is a flat map of service identifier to key value. Read once at
// startup like every other source; the registry does not watch Vault for
// rotation.
type VaultSource struct {
	Addr  string
	Token string
	Mount string // defaults to "secret"
	Path  string
}

func (s VaultSource) Load(ctx context.Context) ([]domain.KeyRecord, error) {
	vcfg := api.DefaultConfig()
	vcfg.Address = s.Addr
	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	if s.Token != "" {
		client.SetToken(s.Token)
	}

	mount := s.Mount
	if mount == "" {
		mount = "secret"
	}
	sec, err := client.KVv2(mount).Get(ctx, s.Path)
	if err != nil {
		return nil, fmt.Errorf("vault read %s/%s: %w", mount, s.Path, err)
	}

	recs := make([]domain.KeyRecord, 0, len(sec.Data))
	for name, v := range sec.Data {
		val, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("vault key %q: value is not a string", name)
		}
		recs = append(recs, domain.KeyRecord{
			Service: domain.ServiceID(name),
			Key:     val,
		})
	}
	return recs, nil
}
