package config

const (
	defaultConfigPath           = "~/.config/boardgamefinder/config.toml"
	defaultDataDir              = "~/.local/share/boardgamefinder"
	defaultLogDir               = "~/.local/share/boardgamefinder/logs"
	defaultLLMProvider          = "openrouter"
	defaultOpenRouterBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel      = "google/gemini-2.5-flash"
	defaultAnthropicModel       = "claude-sonnet-4-5"
	defaultLLMReferer           = "https://github.com/wouterstultiens/boardgame-finder"
	defaultLLMTitle             = "Boardgame Finder"
	defaultLLMTimeoutSeconds    = 60
	defaultLLMMaxTokens         = 1024
	defaultCatalogSource        = "file"
	defaultCatalogPath          = "~/.local/share/boardgamefinder/boardgames.csv"
	defaultMatchingMethod       = "llm"
	defaultSuffixCheck          = "warn"
	defaultFuzzyCutoff          = 0.7
	defaultCandidateCutoff      = 0.6
	defaultNumCandidates        = 20
	defaultListingConcurrency   = 4
	defaultNameConcurrency      = 4
	defaultOracleTimeoutSeconds = 60
	defaultMaxListings          = 50
	defaultListingsUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) boardgamefinder"
	defaultRequestTimeout       = 20
	defaultVisionEndpoint       = "https://vision.googleapis.com/v1/images:annotate"
	defaultOCRTimeoutSeconds    = 30
	defaultCatalogTimeout       = 120
	defaultStoreFile            = "listings.db"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultTelemetryProtocol    = "grpc"
	defaultTelemetryEndpoint    = "localhost:4317"
	defaultServiceName          = "boardgamefinder"
	defaultMetricsListen        = "127.0.0.1:9464"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		LLM: LLM{
			Provider:       defaultLLMProvider,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			MaxTokens:      defaultLLMMaxTokens,
		},
		Catalog: Catalog{
			Source:         defaultCatalogSource,
			Path:           defaultCatalogPath,
			TimeoutSeconds: defaultCatalogTimeout,
		},
		Matching: Matching{
			Method:          defaultMatchingMethod,
			FuzzyCutoff:     defaultFuzzyCutoff,
			CandidateCutoff: defaultCandidateCutoff,
			NumCandidates:   defaultNumCandidates,
			SuffixCheck:     defaultSuffixCheck,
		},
		Pipeline: Pipeline{
			ListingConcurrency:   defaultListingConcurrency,
			NameConcurrency:      defaultNameConcurrency,
			OracleTimeoutSeconds: defaultOracleTimeoutSeconds,
			MaxListings:          defaultMaxListings,
		},
		Listings: Listings{
			UserAgent:             defaultListingsUserAgent,
			RequestTimeoutSeconds: defaultRequestTimeout,
		},
		OCR: OCR{
			Endpoint:       defaultVisionEndpoint,
			TimeoutSeconds: defaultOCRTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Telemetry: Telemetry{
			Endpoint:    defaultTelemetryEndpoint,
			Protocol:    defaultTelemetryProtocol,
			ServiceName: defaultServiceName,
		},
		Metrics: Metrics{
			Listen: defaultMetricsListen,
		},
	}
}
