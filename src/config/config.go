package config

import "github.com/rs/zerolog"

type TapConfig struct {
	LogLevel zerolog.Level

	// Strict promotes chunk CRC mismatches from warnings to fatal errors.
	Strict bool
}

var Config = TapConfig{
	LogLevel: zerolog.InfoLevel,
}
