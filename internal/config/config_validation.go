// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the final merged [StructuredConfig] is usable at
// startup.
func (cfg *StructuredConfig) validate() error {
	var addr NetAddress
	if err := addr.Set(cfg.Server.Address); err != nil {
		return fmt.Errorf("%w: address %q: %w", ErrInvalidServerConfigs, cfg.Server.Address, err)
	}
	if cfg.Server.AllowListFile == "" {
		return fmt.Errorf("%w: empty allow-list file path", ErrInvalidServerConfigs)
	}
	if cfg.Server.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", ErrInvalidServerConfigs)
	}
	if cfg.Server.MaxLoginAttempts <= 0 {
		return fmt.Errorf("%w: max login attempts must be positive", ErrInvalidServerConfigs)
	}

	if cfg.Storage.PasswdFile == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Log.File == "" {
		return ErrInvalidLogConfigs
	}

	return nil
}
