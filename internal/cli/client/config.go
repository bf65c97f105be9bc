package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// GlobalConfig is stored in <user config dir>/plantrec/config.json.
type GlobalConfig struct {
	APIURL string `json:"api_url"`
	UserID string `json:"user_id,omitempty"`
}

var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "plantrec"), nil
}

func defaultGetConfigPath() (string, error) {
	configDir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadGlobalConfig returns nil without error when no config file exists.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath, err := getConfigPathFunc()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveGlobalConfig writes the config with 0600 permissions.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	configPath, err := getConfigPathFunc()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func ConfigureCmd() *cobra.Command {
	var apiURL, userID string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save the API URL and user id to the global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, err := LoadGlobalConfig()
			if err != nil {
				return err
			}
			cfg := GlobalConfig{APIURL: defaultAPIURL}
			if existing != nil {
				cfg = *existing
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("user-id") {
				cfg.UserID = userID
			}
			if err := SaveGlobalConfig(&cfg); err != nil {
				return err
			}

			path, _ := getConfigPathFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "set-api-url", "", "API base URL to store")
	cmd.Flags().StringVar(&userID, "user-id", "", "User id sent with every request")

	return cmd
}
