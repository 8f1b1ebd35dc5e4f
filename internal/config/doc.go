// Package config provides configuration structures and utilities for domainscan.
// It defines the run mode, crawl limits, session recycling, per-step timeouts,
// page-selection strategy, storage backend and classifier settings, and the
// loaders that fill them from a YAML file, a .env file and the environment.
package config
