package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Server struct {
		Address          string   `json:"address"`
		AllowListFile    string   `json:"allow_list_file"`
		PollInterval     Duration `json:"poll_interval"`
		WelcomeMessage   string   `json:"welcome_message"`
		MaxLoginAttempts int      `json:"max_login_attempts"`
	} `json:"server,omitempty"`

	Storage struct {
		PasswdFile string `json:"passwd_file"`
	} `json:"storage,omitempty"`

	Log struct {
		File string `json:"file"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Server: Server{
			Address:          jsonCfg.Server.Address,
			AllowListFile:    jsonCfg.Server.AllowListFile,
			PollInterval:     time.Duration(jsonCfg.Server.PollInterval),
			WelcomeMessage:   jsonCfg.Server.WelcomeMessage,
			MaxLoginAttempts: jsonCfg.Server.MaxLoginAttempts,
		},
		Storage: Storage{
			PasswdFile: jsonCfg.Storage.PasswdFile,
		},
		Log: Log{
			File: jsonCfg.Log.File,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "100ms" as well as plain nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
