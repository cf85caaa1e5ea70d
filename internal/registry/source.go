package registry

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domain "github.com/Drayarch/genlayer-intelligent-contracts/internal/entity"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/security"
)

// Source yields the seed records a registry is built from. A source runs
// exactly once, at startup; the registry never re-reads it.
type Source interface {
	Load(ctx context.Context) ([]domain.KeyRecord, error)
}

// StaticSource serves the built-in demo seeds.
type StaticSource struct{}

func (StaticSource) Load(context.Context) ([]domain.KeyRecord, error) {
	return Defaults(), nil
}

// FileSource reads a plaintext YAML seed file:
//
//	services:
//	  - service: weather
//	    key: bbe7e79a414f003442cd9662246f7be7
//	    provider: OpenWeatherMap
//	    description: Get weather data for any city
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) ([]domain.KeyRecord, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeedYAML(b)
}

// SealedFileSource reads a seed envelope produced by keyseal: the same YAML
// document, AES-GCM encrypted and RSA signed. The signature is checked
// before decryption.
type SealedFileSource struct {
	Path   string
	Sealer security.Sealer
}

func (s SealedFileSource) Load(context.Context) ([]domain.KeyRecord, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read sealed seed file: %w", err)
	}
	env, err := security.DecodeEnvelope(b)
	if err != nil {
		return nil, fmt.Errorf("sealed seed file: %w", err)
	}
	plain, err := security.OpenEnvelope(s.Sealer, env)
	if err != nil {
		return nil, fmt.Errorf("open sealed seeds: %w", err)
	}
	return ParseSeedYAML(plain)
}

type seedFile struct {
	Services []struct {
		Service     string `yaml:"service"`
		Key         string `yaml:"key"`
		Provider    string `yaml:"provider"`
		Description string `yaml:"description"`
	} `yaml:"services"`
}

// ParseSeedYAML decodes a seed document. Validation happens later in New, so
// a seed file with a malformed identifier fails at construction with the
// same error a malformed inline seed would.
func ParseSeedYAML(b []byte) ([]domain.KeyRecord, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seeds: %w", err)
	}
	recs := make([]domain.KeyRecord, 0, len(f.Services))
	for _, s := range f.Services {
		recs = append(recs, domain.KeyRecord{
			Service:     domain.ServiceID(s.Service),
			Key:         s.Key,
			Provider:    s.Provider,
			Description: s.Description,
		})
	}
	return recs, nil
}
