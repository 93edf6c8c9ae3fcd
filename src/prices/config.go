package prices

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	QuoteBaseURL    string `envconfig:"QUOTE_BASE_URL" default:"https://query1.finance.yahoo.com"`
	CacheTTLSeconds int    `envconfig:"PRICE_CACHE_TTL_SECONDS" default:"60"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
