package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/knowledge"
	"github.com/jeanpaul/learnbot/internal/storage"
)

// openBackend opens the configured storage, or an in-memory one for
// sessions that should not persist anything.
func (o *rootOptions) openBackend(ephemeral bool) (storage.Backend, error) {
	cfg := o.cfg.Storage
	if ephemeral {
		cfg.Type = "memory"
	}
	b, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Type, err)
	}
	return b, nil
}

func (o *rootOptions) storeName(name string) string {
	if name != "" {
		return name
	}
	return o.cfg.DefaultStore
}

// openStore loads the named profile's knowledge base. A base that cannot be
// read is logged and replaced by the profile's seed entries.
func (o *rootOptions) openStore(ctx context.Context, backend storage.Backend, name string) (*knowledge.Store, *config.StoreProfile, error) {
	profile, err := config.LoadStoreProfile(name)
	if err != nil {
		return nil, nil, err
	}

	store := knowledge.NewStore(profile.PersistenceKey(), backend)
	if _, err := store.Load(ctx, seedBase(profile)); err != nil {
		log.WithError(err).WithField("store", store.Key()).Warn("could not load knowledge base, starting from the built-in entries")
	}
	return store, profile, nil
}

func (o *rootOptions) openEngine(ctx context.Context, backend storage.Backend, name string) (*engine.Engine, *config.StoreProfile, error) {
	store, profile, err := o.openStore(ctx, backend, name)
	if err != nil {
		return nil, nil, err
	}
	return engine.New(store, engine.OptionsFromConfig(o.cfg)), profile, nil
}

func seedBase(p *config.StoreProfile) knowledge.KnowledgeBase {
	kb := knowledge.KnowledgeBase{Entries: make([]knowledge.Entry, 0, len(p.Seed))}
	for _, s := range p.Seed {
		kb.Entries = append(kb.Entries, knowledge.Entry{Question: s.Question, Answer: s.Answer})
	}
	return kb
}
