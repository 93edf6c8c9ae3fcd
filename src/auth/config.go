package auth

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	JWTSecret   string `envconfig:"SUPABASE_JWT_SECRET" required:"true"`
	JWTAudience string `envconfig:"JWT_AUDIENCE" default:"authenticated"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
