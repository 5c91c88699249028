package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// SecretKeys are the only settings a secrets file may carry. URLs are included
// because they can embed credentials.
var SecretKeys = []string{
	"search.url",
	"search.urls",
	"search.username",
	"search.password",
	"search.api_key",
	"search.aws_access_key_id",
	"search.aws_secret_access_key",
	"search.aws_session_token",
}

var secretsFileExts = []string{".yaml", ".yml", ".json", ".toml"}

// LoadWithSecrets loads the configuration and merges the secrets file over it.
// Precedence: ENV > secrets file > config file > defaults.
//
//	# config.yaml
//	search:
//	  type: opensearch
//	  url: https://search.internal:9200
//
//	# secrets.yaml
//	search:
//	  username: searchctl
//	  password: s3cr3t
//
// The secrets file is <ENV_PREFIX>_SECRETS_FILE when set, otherwise secrets.<ext>
// next to the config file or in the working directory. It is optional. The
// second return value holds only what the secrets file set, for Redacted.
func (l *ViperLoader) LoadWithSecrets() (*Config, *Config, error) {
	v, err := l.newViper()
	if err != nil {
		return nil, nil, err
	}

	path, err := l.secretsFile()
	if err != nil {
		return nil, nil, err
	}
	var secrets *Config
	if path != "" {
		sv, err := readSecrets(path)
		if err != nil {
			return nil, nil, err
		}
		secrets = &Config{}
		if err := sv.Unmarshal(secrets); err != nil {
			return nil, nil, fmt.Errorf("failed to unmarshal secrets file %s: %w", path, err)
		}
		if err := v.MergeConfigMap(sv.AllSettings()); err != nil {
			return nil, nil, fmt.Errorf("failed to merge secrets: %w", err)
		}
	}

	l.bindEnvVars(v)
	cfg, err := l.unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, secrets, nil
}

// readSecrets reads path and rejects any key outside SecretKeys, so plain
// settings cannot hide in the secrets file.
func readSecrets(path string) (*viper.Viper, error) {
	sv := viper.New()
	sv.SetConfigFile(path)
	if err := sv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read secrets file %s: %w", path, err)
	}
	var foreign []string
	for _, key := range sv.AllKeys() {
		if !slices.Contains(SecretKeys, key) {
			foreign = append(foreign, key)
		}
	}
	if len(foreign) > 0 {
		slices.Sort(foreign)
		return nil, fmt.Errorf("secrets file %s sets non-secret keys: %s", path, strings.Join(foreign, ", "))
	}
	return sv, nil
}

func (l *ViperLoader) secretsFile() (string, error) {
	envName := l.prefixedEnv("SECRETS_FILE")
	if raw, ok := os.LookupEnv(envName); ok {
		path := strings.TrimSpace(raw)
		if path == "" {
			return "", fmt.Errorf("%s is set but empty", envName)
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("%s points to an inaccessible file %s: %w", envName, path, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s must point to a file, got directory %s", envName, path)
		}
		return path, nil
	}

	var candidates []string
	if l.configFile != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(l.configFile), "secrets"+filepath.Ext(l.configFile)))
	}
	for _, ext := range secretsFileExts {
		candidates = append(candidates, "secrets"+ext)
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}
