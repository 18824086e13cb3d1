package config

// Config is the root configuration structure.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Audio   AudioConfig   `toml:"audio"`
	Web     WebConfig     `toml:"web"`
	MPRIS   MPRISConfig   `toml:"mpris"`
	Session SessionConfig `toml:"session"`
	TUI     TUIConfig     `toml:"tui"`
	Log     LogConfig     `toml:"log"`
}

// CatalogConfig holds remote catalog API settings.
type CatalogConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
	Quality string `toml:"quality"`
	// CacheTTL is the metadata cache lifetime in seconds.
	CacheTTL int `toml:"cache_ttl"`
}

// AudioConfig holds playback output settings.
type AudioConfig struct {
	Volume int `toml:"volume"`
	// SampleRate is the output device rate in Hz; streams at other rates
	// are resampled.
	SampleRate int `toml:"sample_rate"`
}

// WebConfig holds the websocket control interface settings.
type WebConfig struct {
	Enabled bool   `toml:"enabled"`
	Bind    string `toml:"bind"`
	Port    int    `toml:"port"`
}

// MPRISConfig holds desktop integration settings.
type MPRISConfig struct {
	Enabled bool `toml:"enabled"`
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	// Path to the session database; empty uses the default data dir.
	Path string `toml:"path"`
	// Disabled turns off persistence entirely.
	Disabled bool `toml:"disabled"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
