package config

import (
	"strings"
	"time"
)

// ServiceNames lists every emulated service in serving order. The names are
// the canonical keys used in services.ports and services.disabled.
var ServiceNames = []string{
	"s3",
	"sns",
	"sqs",
	"dynamodb",
	"lambda",
	"firehose",
	"cognito",
	"kms",
	"secretsmanager",
	"kinesis",
	"events",
	"stepfunctions",
	"ssm",
	"logs",
}

// DefaultPorts returns the default listen port per service. The ports follow
// the conventional local-emulator assignments (9324 for SQS, 8000 for
// DynamoDB, 9000 for S3, ...).
func DefaultPorts() map[string]int {
	return map[string]int{
		"s3":             9000,
		"sns":            9911,
		"sqs":            9324,
		"dynamodb":       8000,
		"lambda":         9001,
		"firehose":       4573,
		"cognito":        9229,
		"kms":            7600,
		"secretsmanager": 7700,
		"kinesis":        4568,
		"events":         9195,
		"stepfunctions":  8083,
		"ssm":            9100,
		"logs":           9201,
	}
}

// KnownService reports whether name is one of the emulated services.
func KnownService(name string) bool {
	for _, n := range ServiceNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// GetDefaultConfig returns a fully populated default configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in any zero-valued configuration fields. Explicit
// values are preserved.
func ApplyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Account == "" {
		cfg.Account = "000000000000"
	}
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9400
	}
	applyServiceDefaults(&cfg.Services)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

func applyServiceDefaults(cfg *ServicesConfig) {
	defaults := DefaultPorts()
	if cfg.Ports == nil {
		cfg.Ports = make(map[string]int, len(defaults))
	}
	for name, port := range defaults {
		if cfg.Ports[name] == 0 {
			cfg.Ports[name] = port
		}
	}
}
