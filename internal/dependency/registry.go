package dependency

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/domaindive/internal/config"
	"github.com/nao1215/domaindive/internal/model"
)

// Registry maps dependency keys to the factories that create them.
// A Registry is populated once at startup and then only read, so it is safe
// to share between concurrent runs.
type Registry struct {
	factories map[model.DependencyKey]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[model.DependencyKey]Factory),
	}
}

// Register adds or replaces the factory for key.
func (r *Registry) Register(key model.DependencyKey, factory Factory) {
	r.factories[key] = factory
}

// Has reports whether a factory is registered for key.
func (r *Registry) Has(key model.DependencyKey) bool {
	_, ok := r.factories[key]
	return ok
}

// New creates a fresh instance of the dependency registered for key.
func (r *Registry) New(key model.DependencyKey) (Dependency, error) {
	factory, ok := r.factories[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDependency, key)
	}
	return factory(), nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []model.DependencyKey {
	return slices.Sorted(maps.Keys(r.factories))
}

// NewDefaultRegistry creates a Registry holding every built-in dependency,
// configured from cfg.
//
// The geolocation rate limiter is created here, once, and shared by every
// geolocation instance so the request budget holds across runs.
func NewDefaultRegistry(cfg *config.Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	resolverOpts := []ResolverOption{
		WithServers(cfg.Resolvers),
		WithQueryTimeout(cfg.DNSTimeout),
	}

	var limiter *rate.Limiter
	if cfg.GeolocationRate > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.GeolocationRate)), 1)
	}

	r := NewRegistry()
	r.Register(KeyDNSRecords, func() Dependency {
		return NewDNSRecords(NewResolver(resolverOpts...), WithDNSLogger(logger))
	})
	r.Register(KeyNameservers, func() Dependency {
		return NewNameservers(NewResolver(resolverOpts...))
	})
	r.Register(KeyWhois, func() Dependency {
		return NewWhois(WithWhoisTimeout(cfg.WhoisTimeout))
	})
	r.Register(KeyTLSCertificate, func() Dependency {
		return NewTLSCertificate(WithTLSTimeout(cfg.TLSTimeout))
	})
	r.Register(KeyHTTPHeaders, func() Dependency {
		return NewHTTPHeaders(
			WithHTTPTimeout(cfg.HTTPTimeout),
			WithHTTPUserAgent(cfg.UserAgent),
		)
	})
	r.Register(KeyGeolocation, func() Dependency {
		return NewGeolocation(
			WithGeolocationEndpoint(cfg.GeolocationEndpoint),
			WithGeolocationTimeout(cfg.GeolocationTimeout),
			WithGeolocationLimiter(limiter),
		)
	})

	return r
}
