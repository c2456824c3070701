package docstore

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/docstore/codec"
	"github.com/hupe1980/docstore/document"
)

// DefaultBatchRebuildRatio is the share of a collection a batch update may
// touch before indices are marked dirty instead of maintained per document.
const DefaultBatchRebuildRatio = 0.25

// Config is the declarative collection configuration. It can be loaded from
// YAML or JSON with LoadConfig.
type Config struct {
	// Indices declares binary indices, in declaration order.
	Indices []string `json:"indices" yaml:"indices" validate:"dive,required"`
	// Unique declares unique indices.
	Unique []string `json:"unique" yaml:"unique" validate:"dive,required"`
	// AdaptiveBinaryIndices maintains indices incrementally on every
	// mutation. When false, mutations mark indices dirty and the next read
	// rebuilds them.
	AdaptiveBinaryIndices bool `json:"adaptiveBinaryIndices" yaml:"adaptiveBinaryIndices"`
	// Clone enables defensive copies at the store boundary.
	Clone bool `json:"clone" yaml:"clone"`
	// CloneMethod selects the copy strategy.
	CloneMethod document.CloneMethod `json:"cloneMethod" yaml:"cloneMethod" validate:"omitempty,oneof=shallow deep codec"`
	// BatchRebuildRatio is the share of the collection a batch may touch
	// before indices are rebuilt lazily instead of maintained. Zero disables
	// the switch.
	BatchRebuildRatio float64 `json:"batchRebuildRatio" yaml:"batchRebuildRatio" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the configuration used when no option overrides it.
func DefaultConfig() Config {
	return Config{
		AdaptiveBinaryIndices: true,
		CloneMethod:           document.CloneDeep,
		BatchRebuildRatio:     DefaultBatchRebuildRatio,
	}
}

var configValidate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParseConfig decodes a YAML (or JSON) document over DefaultConfig and
// validates the result. Fields absent from data keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("load config file: %w", err)
	}
	return ParseConfig(data)
}

type options struct {
	config           Config
	codec            codec.Codec
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a collection.
type Option func(*options)

// WithConfig replaces the whole declarative configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithIndices declares binary indices on fields.
func WithIndices(fields ...string) Option {
	return func(o *options) {
		o.config.Indices = append(o.config.Indices, fields...)
	}
}

// WithUnique declares unique indices on fields.
func WithUnique(fields ...string) Option {
	return func(o *options) {
		o.config.Unique = append(o.config.Unique, fields...)
	}
}

// WithAdaptiveIndices toggles incremental index maintenance.
func WithAdaptiveIndices(adaptive bool) Option {
	return func(o *options) {
		o.config.AdaptiveBinaryIndices = adaptive
	}
}

// WithClone enables clone isolation with the given method. An empty method
// selects document.CloneDeep.
func WithClone(method document.CloneMethod) Option {
	return func(o *options) {
		if method == "" {
			method = document.CloneDeep
		}
		o.config.Clone = true
		o.config.CloneMethod = method
	}
}

// WithBatchRebuildRatio sets Config.BatchRebuildRatio.
func WithBatchRebuildRatio(ratio float64) Option {
	return func(o *options) {
		o.config.BatchRebuildRatio = ratio
	}
}

// WithCodec configures the codec used by the codec clone method and by
// Snapshot encoders that consult the collection.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &docstore.BasicMetricsCollector{}
//	users, _ := docstore.New("users", docstore.WithMetricsCollector(metrics))
//	// ... use users ...
//	stats := metrics.GetStats()
//	fmt.Printf("Inserts: %d, Avg latency: %dns\n", stats.InsertCount, stats.InsertAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := docstore.NewJSONLogger(slog.LevelInfo)
//	users, _ := docstore.New("users", docstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{
		config:           DefaultConfig(),
		codec:            codec.Default,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.config.CloneMethod == "" {
		o.config.CloneMethod = document.CloneDeep
	}
	if err := o.config.Validate(); err != nil {
		return o, err
	}
	if _, err := document.ParseCloneMethod(string(o.config.CloneMethod)); err != nil {
		return o, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return o, nil
}

// ReadOption configures a single read.
type ReadOption func(*readOptions)

type readOptions struct {
	forceClone  bool
	cloneMethod document.CloneMethod
}

// WithForceClone clones the returned documents with method even when the
// collection does not clone by default.
func WithForceClone(method document.CloneMethod) ReadOption {
	return func(o *readOptions) {
		if method == "" {
			method = document.CloneDeep
		}
		o.forceClone = true
		o.cloneMethod = method
	}
}

func applyReadOptions(optFns []ReadOption) readOptions {
	var o readOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
