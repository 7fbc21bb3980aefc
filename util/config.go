package util

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultRoundSeconds is used when ROUND_SECONDS is not set.
const DefaultRoundSeconds = 75

type Config struct {
	Port              string `validate:"required,number"`
	TokenSymmetricKey string `validate:"required,len=32"`
	RoundSeconds      int    `validate:"required,min=10,max=600"`
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Port:              os.Getenv("PORT"),
		TokenSymmetricKey: os.Getenv("TOKEN_SYMMETRIC_KEY"),
		RoundSeconds:      DefaultRoundSeconds,
	}

	if v := os.Getenv("ROUND_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		config.RoundSeconds = seconds
	}

	if err := Validate.Struct(config); err != nil {
		return nil, err
	}

	return config, nil
}
