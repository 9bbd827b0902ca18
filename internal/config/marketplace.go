package config

import "time"

// MarketplaceConfig configures the client side of the marketplace: where
// the backend lives and the placeholder rate used for the dashboard
// balance estimate.
type MarketplaceConfig struct {
    APIBaseURL      string
    HTTPTimeout     time.Duration
    PlaceholderRate int64 // yen per booking, display only
    LogLevel        string
}

func LoadMarketplaceConfig() MarketplaceConfig {
    LoadDotEnv()
    return MarketplaceConfig{
        APIBaseURL:      envStr("MARKETPLACE_API_URL", "http://localhost:8080"),
        HTTPTimeout:     envDur("MARKETPLACE_HTTP_TIMEOUT", 10*time.Second),
        PlaceholderRate: envInt64("MARKETPLACE_PLACEHOLDER_RATE", 1000),
        LogLevel:        envStr("LOG_LEVEL", "info"),
    }
}
