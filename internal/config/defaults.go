package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:  "https://www.qobuz.com/api.json/0.2",
			Quality:  "cd",
			CacheTTL: 600,
		},
		Audio: AudioConfig{
			Volume:     100,
			SampleRate: 44100,
		},
		Web: WebConfig{
			Enabled: false,
			Bind:    "127.0.0.1",
			Port:    9888,
		},
		MPRIS: MPRISConfig{
			Enabled: false,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Catalog
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = d.Catalog.BaseURL
	}
	if c.Catalog.Quality == "" {
		c.Catalog.Quality = d.Catalog.Quality
	}
	if c.Catalog.CacheTTL == 0 {
		c.Catalog.CacheTTL = d.Catalog.CacheTTL
	}

	// Audio
	if c.Audio.Volume == 0 {
		c.Audio.Volume = d.Audio.Volume
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}

	// Web
	if c.Web.Bind == "" {
		c.Web.Bind = d.Web.Bind
	}
	if c.Web.Port == 0 {
		c.Web.Port = d.Web.Port
	}

	// Session
	if c.Session.Path == "" {
		c.Session.Path = DefaultSessionPath()
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
