// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env struct tags, with optional dotenv
// files read through github.com/joho/godotenv.
//
// Load caches the parsed value per struct type, so every component asking for
// the same configuration sees the same snapshot. Parse skips the cache and
// accepts explicit dotenv files, which suits command-line tools taking an
// --env-file flag.
package config
