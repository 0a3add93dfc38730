package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port int `toml:"port"`
}

// ProviderConfig points at the third-party mail API the service consumes.
type ProviderConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

func (p *ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ComposeConfig carries the send-time validation limits.
type ComposeConfig struct {
	MaxRecipients     int   `toml:"max_recipients"`
	MaxSubjectLength  int   `toml:"max_subject_length"`
	MaxAttachmentSize int64 `toml:"max_attachment_size"` // per file, bytes
	MaxAttachments    int   `toml:"max_attachments"`
	MaxTotalSize      int64 `toml:"max_total_size"` // all attachments, bytes
}

type CacheConfig struct {
	Folder     string `toml:"folder"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RefreshConfig controls the background inbox poller.
type RefreshConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	FetchLimit      int `toml:"fetch_limit"`
}

func (r *RefreshConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

type AuthConfig struct {
	PasscodeHash string `toml:"passcode_hash"` // bcrypt hash of the dashboard passcode
}

// SentSubfolder maps a sent-mail subfolder to the sending domain that
// defines it.
type SentSubfolder struct {
	ID     string `toml:"id"`
	Label  string `toml:"label"`
	Domain string `toml:"domain"`
}

type Config struct {
	Server         ServerConfig    `toml:"server"`
	Provider       ProviderConfig  `toml:"provider"`
	Compose        ComposeConfig   `toml:"compose"`
	Cache          CacheConfig     `toml:"cache"`
	Refresh        RefreshConfig   `toml:"refresh"`
	Auth           AuthConfig      `toml:"auth"`
	SentSubfolders []SentSubfolder `toml:"sent_subfolder"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 3000
	config.Provider.TimeoutSeconds = 15
	config.Compose.MaxRecipients = 50
	config.Compose.MaxSubjectLength = 200
	config.Compose.MaxAttachmentSize = 10 << 20 // 10 MB
	config.Compose.MaxAttachments = 10
	config.Compose.MaxTotalSize = 25 << 20 // 25 MB
	config.Cache.Folder = "./cache"
	config.Cache.TTLSeconds = 60
	config.Refresh.IntervalSeconds = 120
	config.Refresh.FetchLimit = 50

	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	if config.Provider.BaseURL == "" {
		return nil, fmt.Errorf("provider base_url is required")
	}

	return &config, nil
}
