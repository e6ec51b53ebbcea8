package config

const (
	defaultConfigPath       = "~/.config/sortbox/config.toml"
	defaultWatchDir         = "~/Downloads"
	defaultDestinationName  = "organized"
	defaultLogDir           = "~/.local/share/sortbox/logs"
	defaultStateDir         = "~/.local/state/sortbox"
	defaultLogRetentionDays = 30
	defaultLogFormat        = "auto"
	defaultLogLevel         = "info"
	defaultDebounceMillis   = 500
	maxDebounceMillis       = 60_000
)

const (
	envWatchDir       = "SORTBOX_WATCH_DIR"
	envDestinationDir = "SORTBOX_DESTINATION_DIR"
	envLogLevel       = "SORTBOX_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults. Watch and
// destination directories are resolved during normalization so environment
// fallbacks apply.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Watch: Watch{
			DebounceMillis: defaultDebounceMillis,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
