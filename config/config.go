// Package config loads the YAML device configuration.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const maxPasskey = 999999

type Config struct {
	Device      DeviceConfig      `yaml:"device"`
	Security    SecurityConfig    `yaml:"security"`
	Storage     StorageConfig     `yaml:"storage"`
	Advertising AdvertisingConfig `yaml:"advertising"`
}

type DeviceConfig struct {
	Name             string `yaml:"name"`
	Appearance       uint16 `yaml:"appearance"`
	ModelNumber      string `yaml:"model_number"`
	SerialNumber     string `yaml:"serial_number"`
	FirmwareRevision string `yaml:"firmware_revision"`
	HardwareRevision string `yaml:"hardware_revision"`
	SoftwareRevision string `yaml:"software_revision"`
	Manufacturer     string `yaml:"manufacturer"`
	PnP              PnP    `yaml:"pnp"`
}

type PnP struct {
	VendorIDSource uint8  `yaml:"vendor_id_source"`
	VendorID       uint16 `yaml:"vendor_id"`
	ProductID      uint16 `yaml:"product_id"`
	ProductVersion uint16 `yaml:"product_version"`
}

type SecurityConfig struct {
	Passkey  uint32 `yaml:"passkey"`
	Bond     *bool  `yaml:"bond"`
	LESecure *bool  `yaml:"le_secure"`
}

type StorageConfig struct {
	BondDir     string `yaml:"bond_dir"`
	MaxBlobSize int    `yaml:"max_blob_size"`
}

type AdvertisingConfig struct {
	IntervalMs uint32 `yaml:"interval_ms"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	yes := true
	return &Config{
		Device: DeviceConfig{
			Name:             "Generic HID",
			Appearance:       960,
			ModelNumber:      "1",
			SerialNumber:     "1",
			FirmwareRevision: "1",
			HardwareRevision: "1",
			SoftwareRevision: "1",
			Manufacturer:     "DIY",
			PnP: PnP{
				VendorIDSource: 0x01,
				VendorID:       0xFFFF,
				ProductID:      0x01,
				ProductVersion: 0x0100,
			},
		},
		Security: SecurityConfig{
			Passkey:  1234,
			Bond:     &yes,
			LESecure: &yes,
		},
		Storage: StorageConfig{
			BondDir:     ".",
			MaxBlobSize: 512,
		},
		Advertising: AdvertisingConfig{
			IntervalMs: 100,
		},
	}
}

// Load reads the file, merges it over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrap(err, "can't parse config file")
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func Validate(cfg *Config) error {
	if cfg.Device.Name == "" {
		return errors.New("device.name must not be empty")
	}
	if cfg.Security.Passkey > maxPasskey {
		return errors.Errorf("security.passkey %d out of range, max %d", cfg.Security.Passkey, maxPasskey)
	}
	if cfg.Storage.MaxBlobSize <= 0 {
		return errors.New("storage.max_blob_size must be positive")
	}
	if cfg.Advertising.IntervalMs == 0 {
		return errors.New("advertising.interval_ms must be positive")
	}
	return nil
}

// Bond reports whether bonding is enabled.
func (c *Config) Bond() bool {
	return c.Security.Bond == nil || *c.Security.Bond
}

// LESecure reports whether LE Secure Connections pairing is required.
func (c *Config) LESecure() bool {
	return c.Security.LESecure == nil || *c.Security.LESecure
}
