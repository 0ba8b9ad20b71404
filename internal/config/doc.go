// Package config loads the daemon's own settings (listen port, properties
// file location, logging and rate limits) from YAML files, environment
// variables and CLI flags with precedence: CLI flags > YAML config >
// Environment variables > Defaults. Recommender property values themselves
// are served by package properties and are never read from here.
package config
