package config

import (
	"fmt"
	"net/http"

	"github.com/stratuslocal/stratus/internal/service/cognito"
	"github.com/stratuslocal/stratus/internal/service/dynamodb"
	"github.com/stratuslocal/stratus/internal/service/events"
	"github.com/stratuslocal/stratus/internal/service/firehose"
	"github.com/stratuslocal/stratus/internal/service/kinesis"
	"github.com/stratuslocal/stratus/internal/service/kms"
	"github.com/stratuslocal/stratus/internal/service/lambda"
	"github.com/stratuslocal/stratus/internal/service/logs"
	"github.com/stratuslocal/stratus/internal/service/s3"
	"github.com/stratuslocal/stratus/internal/service/secrets"
	"github.com/stratuslocal/stratus/internal/service/sfn"
	"github.com/stratuslocal/stratus/internal/service/sns"
	"github.com/stratuslocal/stratus/internal/service/sqs"
	"github.com/stratuslocal/stratus/internal/service/ssm"
	"github.com/stratuslocal/stratus/pkg/registry"
)

// InitializeRegistry builds every service state and registers the enabled
// handlers. Disabled services are not registered (and get no listener), with
// one exception: the SQS state always exists because SNS delivers published
// messages into it.
func InitializeRegistry(cfg *Config) (*registry.Registry, error) {
	reg := registry.New(cfg.Region, cfg.Account)

	sqsBase := fmt.Sprintf("http://localhost:%d", cfg.Services.Ports["sqs"])
	sqsReg := sqs.NewRegistry(cfg.Region, cfg.Account, sqsBase)

	handlers := map[string]http.Handler{
		"s3":             s3.NewHandler(s3.NewStore(cfg.Region)),
		"sns":            sns.NewHandler(sns.NewRegistry(cfg.Region, cfg.Account, sqsReg)),
		"sqs":            sqs.NewHandler(sqsReg),
		"dynamodb":       dynamodb.NewHandler(dynamodb.NewRegistry(cfg.Region, cfg.Account)),
		"lambda":         lambda.NewHandler(lambda.NewRegistry(cfg.Region, cfg.Account)),
		"firehose":       firehose.NewHandler(firehose.NewRegistry(cfg.Region, cfg.Account)),
		"cognito":        cognito.NewHandler(cognito.NewRegistry(cfg.Region, cfg.Account)),
		"kms":            kms.NewHandler(kms.NewRegistry(cfg.Region, cfg.Account)),
		"secretsmanager": secrets.NewHandler(secrets.NewRegistry(cfg.Region, cfg.Account)),
		"kinesis":        kinesis.NewHandler(kinesis.NewRegistry(cfg.Region, cfg.Account)),
		"events":         events.NewHandler(events.NewRegistry(cfg.Region, cfg.Account)),
		"stepfunctions":  sfn.NewHandler(sfn.NewRegistry(cfg.Region, cfg.Account)),
		"ssm":            ssm.NewHandler(ssm.NewRegistry(cfg.Region, cfg.Account)),
		"logs":           logs.NewHandler(logs.NewRegistry(cfg.Region, cfg.Account)),
	}

	for _, name := range ServiceNames {
		if !cfg.Services.Enabled(name) {
			continue
		}
		if err := reg.Register(name, cfg.Services.Ports[name], handlers[name]); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", name, err)
		}
	}
	return reg, nil
}
