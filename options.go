package puppetfacts

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/voxpupuli/rspec-puppet-facts/metadata"
	"github.com/voxpupuli/rspec-puppet-facts/version"
)

// Option configures a Resolver.
type Option func(*resolverConfig) error

// resolverConfig holds the resolver-wide configuration. Per-call settings
// live in Request and take precedence where both exist.
type resolverConfig struct {
	hardwareModels  []string
	facterVersion   string
	strict          bool
	osFilter        string
	metadataPath    string
	commonFacts     CommonFacts
	dropLegacy      bool
	resultCacheSize int

	// logger receives warnings. If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// WithHardwareModels sets the default hardware models for requests that
// do not name any.
func WithHardwareModels(models ...string) Option {
	return func(c *resolverConfig) error {
		c.hardwareModels = append(c.hardwareModels, models...)
		return nil
	}
}

// WithFacterVersion sets the default Facter version for requests that do
// not name one.
func WithFacterVersion(v string) Option {
	return func(c *resolverConfig) error {
		c.facterVersion = v
		return nil
	}
}

// WithStrict makes every resolution strict: a Facter version fallback or a
// filter without fact sets fails the resolution instead of warning.
func WithStrict(strict bool) Option {
	return func(c *resolverConfig) error {
		c.strict = strict
		return nil
	}
}

// WithOSFilter keeps only the identifiers starting with prefix, e.g.
// "redhat" or "debian-12". Comparison is case-sensitive.
func WithOSFilter(prefix string) Option {
	return func(c *resolverConfig) error {
		c.osFilter = prefix
		return nil
	}
}

// WithMetadataPath sets the metadata.json read for requests without a
// support matrix. Defaults to metadata.DefaultPath.
func WithMetadataPath(path string) Option {
	return func(c *resolverConfig) error {
		c.metadataPath = path
		return nil
	}
}

// WithCommonFacts sets the facts merged into every fact set before custom
// facts are applied.
func WithCommonFacts(cf CommonFacts) Option {
	return func(c *resolverConfig) error {
		c.commonFacts = cf
		return nil
	}
}

// WithoutLegacyFacts removes legacy top-level facts (operatingsystem,
// ipaddress_eth0, ...) from every fact set, as Facter 5 does.
func WithoutLegacyFacts() Option {
	return func(c *resolverConfig) error {
		c.dropLegacy = true
		return nil
	}
}

// WithResultCacheSize bounds the result cache to n entries, evicting the
// least recently used. The default is an unbounded cache.
func WithResultCacheSize(n int) Option {
	return func(c *resolverConfig) error {
		c.resultCacheSize = n
		return nil
	}
}

// WithLogger sets the logger warnings are written to.
// If not set, logging is disabled (silent mode).
//
// The library uses log/slog, which supports any backend via handlers.
// For example, zap users can use: slog.New(zapslog.NewHandler(zapCore))
func WithLogger(l *slog.Logger) Option {
	return func(c *resolverConfig) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *resolverConfig) validate() error {
	if c.resultCacheSize < 0 {
		return errors.Newf("result cache size must not be negative, got %d", c.resultCacheSize)
	}
	if c.facterVersion != "" {
		if err := version.Validate(c.facterVersion); err != nil {
			return validationError(err)
		}
	}
	for _, m := range c.hardwareModels {
		if m == "" {
			return errors.New("hardware model must not be empty")
		}
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
func (c *resolverConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newResolverConfig applies opts over the defaults and validates the
// result.
func newResolverConfig(opts ...Option) (*resolverConfig, error) {
	c := &resolverConfig{
		metadataPath: metadata.DefaultPath,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, configurationError(err)
		}
	}

	if err := c.validate(); err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		return nil, configurationError(err)
	}

	return c, nil
}
