package language

import (
	"context"
	"fmt"
	"sync"

	"github.com/zjrosen/langue/internal/cachemanager"
	"github.com/zjrosen/langue/internal/log"
	"github.com/zjrosen/langue/internal/paths"
	"github.com/zjrosen/langue/internal/pubsub"
)

// Registry compiles definitions on first use and keeps them for the life of
// the process. Concurrent first requests for one name share a single fetch
// and compile. Loads, registrations and invalidations are published to
// subscribers with the normalized name as payload.
type Registry struct {
	source Source
	cache  cachemanager.CacheManager[string, *Language]
	loader *cachemanager.ReadThroughCache[string, *Language, string]
	events *pubsub.Broker[string]
}

// NewRegistry returns a registry backed by an in-memory cache.
func NewRegistry(source Source) *Registry {
	return NewRegistryWithCache(source,
		cachemanager.NewInMemoryCacheManager[string, *Language]("languages", cachemanager.NoExpiration, 0))
}

// NewRegistryWithCache returns a registry storing compiled definitions in
// cache.
func NewRegistryWithCache(source Source, cache cachemanager.CacheManager[string, *Language]) *Registry {
	r := &Registry{source: source, cache: cache, events: pubsub.NewBroker[string]()}
	r.loader = cachemanager.NewReadThroughCache[string, *Language, string](cache, r.load, false)
	return r
}

// Get returns the compiled definition for name, fetching and compiling it on
// first use. Failures are not cached.
func (r *Registry) Get(ctx context.Context, name string) (*Language, error) {
	key := Normalize(name)
	if err := validName(key); err != nil {
		return nil, err
	}
	return r.loader.Get(ctx, key, key, cachemanager.NoExpiration)
}

// Register stores an already compiled definition under name, replacing any
// cached one.
func (r *Registry) Register(name string, lang *Language) error {
	key := Normalize(name)
	if err := validName(key); err != nil {
		return err
	}
	r.cache.Set(context.Background(), key, lang, cachemanager.NoExpiration)
	r.events.Publish(pubsub.RegisteredEvent, key)
	return nil
}

// Invalidate drops the compiled definitions for names so the next Get
// fetches them again.
func (r *Registry) Invalidate(ctx context.Context, names ...string) error {
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := Normalize(name)
		if err := validName(key); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidate: %w", err)
	}
	for _, key := range keys {
		log.Debug(log.CatLanguage, "definition invalidated", "name", key)
		r.events.Publish(pubsub.InvalidatedEvent, key)
	}
	return nil
}

// Subscribe returns registry events until ctx ends or the registry is closed.
func (r *Registry) Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	return r.events.Subscribe(ctx)
}

// Close ends all subscriptions. Get keeps working.
func (r *Registry) Close() {
	r.events.Close()
}

// Loaded lists the names compiled so far.
func (r *Registry) Loaded(ctx context.Context) []string {
	return r.cache.Keys(ctx)
}

func (r *Registry) load(ctx context.Context, name string) (*Language, error) {
	log.Debug(log.CatLanguage, "compiling definition", "name", name)

	spec, err := r.source.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = name
	}
	lang, err := Compile(spec)
	if err != nil {
		log.ErrorErr(log.CatLanguage, "definition failed to compile", err, "name", name)
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	log.Info(log.CatLanguage, "definition ready", "name", name, "rules", len(lang.Definition))
	r.events.Publish(pubsub.LoadedEvent, name)
	return lang, nil
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry over the builtin definitions and
// the user's languages directory.
func Default() *Registry {
	defaultOnce.Do(func() {
		sources := Chain{}
		if dir := paths.ResolveLanguagesDir(""); dir != "" {
			sources = append(sources, DirSource(dir))
		}
		sources = append(sources, Builtin())
		defaultRegistry = NewRegistry(sources)
	})
	return defaultRegistry
}
