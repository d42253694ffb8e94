package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Service      Service
	SQS          SQS
	ClickHouse   ClickHouse
	Database     Database
	Orchestrator Orchestrator
	Worker       Worker
	Senders      Senders
}

type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
}

type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

type Database struct {
	Path string `envconfig:"DATABASE_PATH" default:"notifications.db"`
}

type Orchestrator struct {
	DefaultLanguage    string        `envconfig:"ORCHESTRATOR_DEFAULT_LANGUAGE" default:"en"`
	DefaultChannel     string        `envconfig:"ORCHESTRATOR_DEFAULT_CHANNEL" default:"EMAIL"`
	DispatchTimeout    time.Duration `envconfig:"ORCHESTRATOR_DISPATCH_TIMEOUT" default:"10s"`
	PreferenceFailOpen bool          `envconfig:"ORCHESTRATOR_PREFERENCE_FAIL_OPEN" default:"false"`
}

type Worker struct {
	Concurrency     int    `envconfig:"WORKER_CONCURRENCY" default:"4"`
	HealthCheckPort string `envconfig:"WORKER_HEALTH_CHECK_PORT" default:"8081"`
}

type Senders struct {
	SMTPHost       string `envconfig:"SENDER_SMTP_HOST" default:"localhost"`
	SMTPPort       string `envconfig:"SENDER_SMTP_PORT" default:"25"`
	SMTPFrom       string `envconfig:"SENDER_SMTP_FROM" default:"no-reply@example.com"`
	SMSGatewayURL  string `envconfig:"SENDER_SMS_GATEWAY_URL" default:""`
	PushGatewayURL string `envconfig:"SENDER_PUSH_GATEWAY_URL" default:""`
	SlackToken     string `envconfig:"SENDER_SLACK_TOKEN" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
