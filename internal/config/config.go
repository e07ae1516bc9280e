package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath       = "config.toml"
	DefaultHTTPAddr         = ":8080"
	DefaultReplyDomain      = "colinrodrigues.com"
	DefaultMemoryInbox      = "memory"
	DefaultMaxAttachment    = 50 << 20
	DefaultMaxSubjectLen    = 200
	DefaultMaxContentLen    = 10000
	DefaultSanitizedLen     = 2000
	DefaultPGHost           = "127.0.0.1"
	DefaultPGPort           = 5432
	DefaultPGUser           = "postgres"
	DefaultPGDatabase       = "tribe"
	DefaultPGSSLMode        = "disable"
	DefaultMediaRoot        = "data"
	DefaultMediaPublicBase  = "https://media.colinrodrigues.com"
	DefaultRedisAddr        = "127.0.0.1:6379"
	DefaultDigestQueue      = "tribe:digest"
	DefaultConfirmationFrom = "noreply"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Inbound  InboundConfig  `toml:"inbound"`
	Postgres PostgresConfig `toml:"postgres"`
	Media    MediaConfig    `toml:"media"`
	Notify   NotifyConfig   `toml:"notify"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// InboundConfig controls the inbound-email webhook pipeline.
// WebhookSecret enables signature enforcement; an empty secret accepts
// unsigned requests (development mode, logged loudly).
type InboundConfig struct {
	WebhookSecret      string `toml:"webhook_secret"`
	ReplyDomain        string `toml:"reply_domain" validate:"required,fqdn"`
	MemoryInbox        string `toml:"memory_inbox" validate:"required"`
	MaxAttachmentBytes int64  `toml:"max_attachment_bytes" validate:"gt=0"`
	MaxSubjectLen      int    `toml:"max_subject_len" validate:"gt=0"`
	MaxContentLen      int    `toml:"max_content_len" validate:"gt=0"`
	MaxSanitizedLen    int    `toml:"max_sanitized_len" validate:"gt=0"`
}

// MemoryAddress returns the full inbox address new-memory mail is sent to,
// e.g. "memory@colinrodrigues.com".
func (c InboundConfig) MemoryAddress() string {
	return c.MemoryInbox + "@" + c.ReplyDomain
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

type MediaConfig struct {
	DataRoot   string `toml:"data_root" validate:"required"`
	PublicBase string `toml:"public_base" validate:"required,url"`
}

// NotifyConfig configures the best-effort confirmation/digest dispatch.
// Sender selects the outbound provider: "mailgun", "smtp", or "" (disabled).
type NotifyConfig struct {
	Sender           string `toml:"sender" validate:"omitempty,oneof=mailgun smtp"`
	ConfirmationFrom string `toml:"confirmation_from"`

	MailgunDomain string `toml:"mailgun_domain"`
	MailgunAPIKey string `toml:"mailgun_api_key"`

	SMTPHost     string `toml:"smtp_host"`
	SMTPPort     int    `toml:"smtp_port"`
	SMTPUser     string `toml:"smtp_user"`
	SMTPPassword string `toml:"smtp_password"`

	RedisAddr   string `toml:"redis_addr"`
	DigestQueue string `toml:"digest_queue"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Inbound: InboundConfig{
			ReplyDomain:        DefaultReplyDomain,
			MemoryInbox:        DefaultMemoryInbox,
			MaxAttachmentBytes: DefaultMaxAttachment,
			MaxSubjectLen:      DefaultMaxSubjectLen,
			MaxContentLen:      DefaultMaxContentLen,
			MaxSanitizedLen:    DefaultSanitizedLen,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Media: MediaConfig{
			DataRoot:   DefaultMediaRoot,
			PublicBase: DefaultMediaPublicBase,
		},
		Notify: NotifyConfig{
			ConfirmationFrom: DefaultConfirmationFrom,
			RedisAddr:        DefaultRedisAddr,
			DigestQueue:      DefaultDigestQueue,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.validate()
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
