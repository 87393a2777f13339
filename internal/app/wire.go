package app

import (
	"net/http"
	"time"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/keystore"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/store"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/transport"
	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/zkp"
)

// Wire bundles the stores, keystore, relay client and proof engine for the
// CLI.
type Wire struct {
	Config Config

	Keys        *keystore.Store
	KeyMaterial domain.KeyMaterialStore
	Persistence domain.Persistence
	Relay       domain.RelayClient
	Engine      *zkp.Engine
	Registry    *zkp.Registry
}

// NewWire constructs the dependency graph from cfg. The keystore starts
// empty; commands load persisted key material with the passphrase when they
// need it.
func NewWire(cfg Config) (*Wire, error) {
	keys, err := keystore.New(cfg.PoolTarget)
	if err != nil {
		return nil, err
	}

	registry, err := zkp.LoadRegistry(cfg.CircuitDir)
	if err != nil {
		return nil, err
	}
	engine, err := zkp.New(registry, cfg.PeerID, zkp.Config{
		CacheCapacity: cfg.ProofCacheCapacity,
		CacheEvict:    cfg.ProofCacheEvict,
		Freshness:     time.Duration(cfg.ProofFreshnessSeconds) * time.Second,
		Workers:       cfg.ProverWorkers,
	})
	if err != nil {
		return nil, err
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Wire{
		Config:      cfg,
		Keys:        keys,
		KeyMaterial: store.NewKeyMaterialFileStore(cfg.Home),
		Persistence: store.NewFileStore(cfg.Home),
		Relay:       transport.NewHTTPRelay(cfg.RelayURL, httpClient),
		Engine:      engine,
		Registry:    registry,
	}, nil
}
