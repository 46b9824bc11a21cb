// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// gatekeeper server and the passwd tool. It is populated by merging built-in
// defaults, environment variables, command-line flags and an optional JSON
// file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Server holds the listener, polling and session settings.
	Server Server `envPrefix:"SERVER_"`

	// Storage holds the location of the password file.
	Storage Storage `envPrefix:"STORAGE_"`

	// Log holds the destination of the server log.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from defaults, environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`

	// Args holds the positional command-line arguments left after flag
	// parsing. The passwd tool reads its command from here.
	Args []string
}

// Server holds the multiplexor settings.
type Server struct {
	// Address is the TCP address the listener binds, in "host:port" format.
	// Env: SERVER_ADDRESS
	Address string `env:"ADDRESS"`

	// AllowListFile is the path of the whitespace-separated list of IP
	// addresses that may connect.
	// Env: SERVER_ALLOW_LIST_FILE
	AllowListFile string `env:"ALLOW_LIST_FILE"`

	// PollInterval is the pause between two polling iterations of the
	// serve loop (e.g. "100ms").
	// Env: SERVER_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// WelcomeMessage is sent to every accepted client before the login
	// prompt.
	// Env: SERVER_WELCOME_MESSAGE
	WelcomeMessage string `env:"WELCOME_MESSAGE"`

	// MaxLoginAttempts is the number of failed logins after which a session
	// is closed.
	// Env: SERVER_MAX_LOGIN_ATTEMPTS
	MaxLoginAttempts int `env:"MAX_LOGIN_ATTEMPTS"`
}

// Storage holds the credential store settings.
type Storage struct {
	// PasswdFile is the path of the password file.
	// Env: STORAGE_PASSWD_FILE
	PasswdFile string `env:"PASSWD_FILE"`
}

// Log holds logging settings.
type Log struct {
	// File is the path the server appends its log to.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// Default values applied before any other source.
const (
	DefaultAddress          = "127.0.0.1:9999"
	DefaultAllowListFile    = "whitelist.txt"
	DefaultPollInterval     = 100 * time.Millisecond
	DefaultWelcomeMessage   = "Welcome to the Gatekeeper Server!\n"
	DefaultMaxLoginAttempts = 2
	DefaultPasswdFile       = "passwd"
	DefaultLogFile          = "server.log"
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			Address:          DefaultAddress,
			AllowListFile:    DefaultAllowListFile,
			PollInterval:     DefaultPollInterval,
			WelcomeMessage:   DefaultWelcomeMessage,
			MaxLoginAttempts: DefaultMaxLoginAttempts,
		},
		Storage: Storage{
			PasswdFile: DefaultPasswdFile,
		},
		Log: Log{
			File: DefaultLogFile,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the configuration from
// all available sources in the following priority order (last source wins
// for non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags parsed from args
//  4. JSON file (path resolved from sources 2 and 3)
//
// args must not include the program name.
func GetStructuredConfig(name string, args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(name, args).
		withJSON().
		build()
}
