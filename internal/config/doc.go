// Package config loads, normalizes, and validates the TOML configuration
// shared by every directplay component: directory layout, the direct-play
// target profile, encoder tuning, batch workflow behavior, and logging.
//
// Configuration is resolved from an explicit --config path, then
// ~/.config/directplay/config.toml, then ./directplay.toml, falling back to
// built-in defaults when no file exists. The loaded Config is immutable by
// convention: components receive it at construction and never write to it.
package config
