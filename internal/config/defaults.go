package config

const (
	defaultOutputDir            = "~/covers"
	defaultLogDir               = "~/.local/share/sleeve/logs"
	defaultLimitPerProvider     = 10
	defaultParallelism          = 12
	defaultRequestTimeout       = 8
	defaultUserAgent            = "sleeve/0.1 (cover-art fetcher)"
	defaultSimilarityThreshold  = 0.92
	defaultYearTolerance        = 1
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultNotifyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Providers: Providers{
			ITunes:           true,
			Deezer:           true,
			MusicBrainz:      false,
			LimitPerProvider: defaultLimitPerProvider,
			Parallelism:      defaultParallelism,
			RequestTimeout:   defaultRequestTimeout,
			UserAgent:        defaultUserAgent,
		},
		Selection: Selection{
			AutoPick:            true,
			AlwaysAsk:           false,
			SimilarityThreshold: defaultSimilarityThreshold,
			YearTolerance:       defaultYearTolerance,
		},
		Output: Output{
			OverwriteExisting: false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Batch:          true,
			Errors:         true,
		},
	}
}
