// Package config loads typed configuration structs from environment
// variables.
//
// Structs declare their sources with `env` tags (parsed by caarlos0/env);
// a .env file in the working directory is read into the environment once
// per process via godotenv, so local development does not need exported
// shell variables.
//
//	var redisCfg redis.Config
//	config.MustLoad(&redisCfg)
//
//	var queueCfg queue.Config
//	config.MustLoad(&queueCfg)
//
// Load returns ErrParsingConfig (joined with the parser's error) when a
// required variable is missing or a value does not convert to the field
// type.
package config
