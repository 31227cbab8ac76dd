package config

const (
	defaultDataDir                  = "~/.local/share/bandfinder"
	defaultLogDir                   = "~/.local/share/bandfinder/logs"
	defaultAPIBind                  = "127.0.0.1:7512"
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
	defaultClassifierProvider       = "keyword"
	defaultClassifierBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultClassifierModel          = "google/gemini-3-flash-preview"
	defaultClassifierReferer        = "https://github.com/bandfinder/bandfinder"
	defaultClassifierTitle          = "BandFinder Genre Classifier"
	defaultClassifierTimeoutSeconds = 30
	defaultTelegramBaseURL          = "https://api.telegram.org"
	defaultTelegramRequestTimeout   = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Classifier: Classifier{
			Provider:       defaultClassifierProvider,
			BaseURL:        defaultClassifierBaseURL,
			Model:          defaultClassifierModel,
			Referer:        defaultClassifierReferer,
			Title:          defaultClassifierTitle,
			TimeoutSeconds: defaultClassifierTimeoutSeconds,
		},
		Telegram: Telegram{
			BaseURL:        defaultTelegramBaseURL,
			RequestTimeout: defaultTelegramRequestTimeout,
		},
	}
}
