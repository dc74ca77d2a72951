// Package config manages the service configuration file. Configuration is a
// single JSON document on disk; missing files are created with defaults, and
// updates are applied by dotted key and persisted immediately.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ServerConfig holds the HTTP-facing settings.
type ServerConfig struct {
	Addr            string `json:"addr"`
	ProductName     string `json:"product_name"`
	MaxUploadSizeMB int64  `json:"max_upload_size_mb"`
	RateLimit       int    `json:"rate_limit"` // requests per minute per IP
}

// ExtractConfig holds the image pipeline tunables.
type ExtractConfig struct {
	SizeLimitKB      int `json:"size_limit_kb"`     // compressed output ceiling
	StartQuality     int `json:"start_quality"`     // first JPEG quality attempted
	QualityStep      int `json:"quality_step"`      // quality decrease per retry
	MinQuality       int `json:"min_quality"`       // floor of the quality ladder
	ThumbnailPx      int `json:"thumbnail_px"`      // preview bounding box
	ThumbnailQuality int `json:"thumbnail_quality"` // preview JPEG quality
}

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Extract ExtractConfig `json:"extract"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "0.0.0.0:8080",
			ProductName:     "SheetPix",
			MaxUploadSizeMB: 50,
			RateLimit:       60,
		},
		Extract: ExtractConfig{
			SizeLimitKB:      50,
			StartQuality:     80,
			QualityStep:      10,
			MinQuality:       10,
			ThumbnailPx:      80,
			ThumbnailQuality: 60,
		},
	}
}

// ConfigManager loads, serves, and persists the configuration. Get returns a
// copy so callers can never mutate the shared state.
type ConfigManager struct {
	mu     sync.RWMutex
	path   string
	config *Config
}

// NewConfigManager creates a manager for the config file at path.
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}
	return &ConfigManager{path: path}, nil
}

// Load reads the config file, creating it with defaults if it does not
// exist. Fields absent from the file keep their default values.
func (cm *ConfigManager) Load() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.config = DefaultConfig()

	data, err := os.ReadFile(cm.path)
	if os.IsNotExist(err) {
		return cm.saveLocked()
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cm.config); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Save persists the current configuration to disk.
func (cm *ConfigManager) Save() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.saveLocked()
}

func (cm *ConfigManager) saveLocked() error {
	if cm.config == nil {
		return fmt.Errorf("config not loaded")
	}
	if dir := filepath.Dir(cm.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(cm.path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration, or nil before Load.
func (cm *ConfigManager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.config == nil {
		return nil
	}
	cp := *cm.config
	return &cp
}

// Update applies dotted-key updates ("server.addr", "extract.min_quality")
// and persists the result. Unknown keys fail the whole update. Numeric
// values arrive as float64 when decoded from JSON.
func (cm *ConfigManager) Update(updates map[string]interface{}) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.config == nil {
		return fmt.Errorf("config not loaded")
	}

	for key, value := range updates {
		if err := cm.applyLocked(key, value); err != nil {
			return err
		}
	}
	return cm.saveLocked()
}

func (cm *ConfigManager) applyLocked(key string, value interface{}) error {
	switch key {
	case "server.addr":
		return setString(&cm.config.Server.Addr, key, value)
	case "server.product_name":
		return setString(&cm.config.Server.ProductName, key, value)
	case "server.max_upload_size_mb":
		n, err := toInt(key, value)
		if err != nil {
			return err
		}
		cm.config.Server.MaxUploadSizeMB = int64(n)
		return nil
	case "server.rate_limit":
		return setInt(&cm.config.Server.RateLimit, key, value)
	case "extract.size_limit_kb":
		return setInt(&cm.config.Extract.SizeLimitKB, key, value)
	case "extract.start_quality":
		return setInt(&cm.config.Extract.StartQuality, key, value)
	case "extract.quality_step":
		return setInt(&cm.config.Extract.QualityStep, key, value)
	case "extract.min_quality":
		return setInt(&cm.config.Extract.MinQuality, key, value)
	case "extract.thumbnail_px":
		return setInt(&cm.config.Extract.ThumbnailPx, key, value)
	case "extract.thumbnail_quality":
		return setInt(&cm.config.Extract.ThumbnailQuality, key, value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func setString(dst *string, key string, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("config key %s expects a string, got %T", key, value)
	}
	*dst = s
	return nil
}

func setInt(dst *int, key string, value interface{}) error {
	n, err := toInt(key, value)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func toInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("config key %s expects a number, got %T", key, value)
	}
}
