package auth

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	JWTIssuer      string `envconfig:"JWT_ISSUER" default:"tradejournal"`
	JWTExpireHours int    `envconfig:"JWT_EXPIRE_HOURS" default:"168"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
