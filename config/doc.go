// Package config loads nanodraw configuration.
//
// Viper reads an optional YAML file, godotenv loads an optional .env file and
// every environment variable is bound to its nested key variants, so
// DRAW_API_KEY overrides draw.api_key.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("nanodraw", &cfg, config.WithConfigFile(path))
package config
