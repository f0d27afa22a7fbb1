package config

import "os"

// fredKeyEnv is read directly so the key never has to live in a config file.
const fredKeyEnv = EnvPrefix + "_RATES_FRED_API_KEY"

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name" yaml:"name"`
	Source APIKeySource `json:"source" yaml:"source"`
	IsSet  bool         `json:"is_set" yaml:"is_set"`
	Masked string       `json:"masked,omitempty" yaml:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of every optional API key.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("FRED API Key", cfg.Rates.FREDAPIKey, fredKeyEnv),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
