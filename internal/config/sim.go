package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/vehicle.sim/internal/physics"
	"github.com/banshee-data/vehicle.sim/internal/sim"
	"github.com/banshee-data/vehicle.sim/internal/stats"
)

// DefaultConfigPath is the path to the canonical simulation defaults file.
const DefaultConfigPath = "config/sim.defaults.json"

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// SimConfig holds the tunable parameters of a simulation run. Every field is
// optional; the Get* methods fall back to the built-in defaults so a partial
// file only overrides what it names. The same JSON shape is served by
// /api/config.
type SimConfig struct {
	// Physical constants
	AirDensity             *float64 `json:"air_density,omitempty"`   // kg/m^3
	AirViscosity           *float64 `json:"air_viscosity,omitempty"` // Pa*s
	Gravity                *float64 `json:"gravity,omitempty"`       // m/s^2
	RollingResistanceCoeff *float64 `json:"rolling_resistance_coeff,omitempty"`
	FuelDensity            *float64 `json:"fuel_density,omitempty"`  // kg/L
	HeatingValue           *float64 `json:"heating_value,omitempty"` // J/kg

	// Integration
	TimeStep         *float64 `json:"time_step,omitempty"` // s
	ProgressInterval *int     `json:"progress_interval,omitempty"`
	RunTimeout       *string  `json:"run_timeout,omitempty"` // duration string like "2m"

	// Analysis
	FuelPricePerLiter *float64 `json:"fuel_price_per_liter,omitempty"`
	CO2PerLiter       *float64 `json:"co2_per_liter,omitempty"`       // kg
	FuelEnergyDensity *float64 `json:"fuel_energy_density,omitempty"` // MJ/L
	PeakWindow        *int     `json:"peak_window,omitempty"`         // steps

	// Output
	OutputDir *string `json:"output_dir,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// EmptySimConfig returns a SimConfig with every field unset.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// DefaultSimConfig returns a SimConfig with every field populated from the
// built-in defaults.
func DefaultSimConfig() *SimConfig {
	c := physics.DefaultConstants()
	return &SimConfig{
		AirDensity:             ptrFloat64(c.AirDensity),
		AirViscosity:           ptrFloat64(c.AirViscosity),
		Gravity:                ptrFloat64(c.Gravity),
		RollingResistanceCoeff: ptrFloat64(c.RollingResistanceCoeff),
		FuelDensity:            ptrFloat64(c.FuelDensity),
		HeatingValue:           ptrFloat64(c.HeatingValue),
		TimeStep:               ptrFloat64(sim.DefaultTimeStep),
		ProgressInterval:       ptrInt(sim.DefaultProgressInterval),
		RunTimeout:             ptrString(defaultRunTimeout.String()),
		FuelPricePerLiter:      ptrFloat64(stats.DefaultFuelPricePerLiter),
		CO2PerLiter:            ptrFloat64(stats.DefaultCO2PerLiter),
		FuelEnergyDensity:      ptrFloat64(stats.DefaultFuelEnergyDensity),
		PeakWindow:             ptrInt(stats.DefaultPeakWindow),
		OutputDir:              ptrString(defaultOutputDir),
	}
}

const (
	defaultRunTimeout = 2 * time.Minute
	defaultOutputDir  = "."
)

// LoadSimConfig loads a SimConfig from a JSON file. The path must have a
// .json extension and the file must be under 1MB.
func LoadSimConfig(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseSimConfig(data)
}

// ParseSimConfig decodes and validates a SimConfig from JSON.
func ParseSimConfig(data []byte) (*SimConfig, error) {
	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the working directory
// or one of its parents. Panics if the file cannot be found, intended for
// test setup.
func MustLoadDefaultConfig() *SimConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSimConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *SimConfig) Validate() error {
	if err := c.Constants().Validate(); err != nil {
		return err
	}
	if c.TimeStep != nil && *c.TimeStep <= 0 {
		return fmt.Errorf("time_step must be positive, got %f", *c.TimeStep)
	}
	if c.ProgressInterval != nil && *c.ProgressInterval <= 0 {
		return fmt.Errorf("progress_interval must be positive, got %d", *c.ProgressInterval)
	}
	if c.RunTimeout != nil && *c.RunTimeout != "" {
		if _, err := time.ParseDuration(*c.RunTimeout); err != nil {
			return fmt.Errorf("invalid run_timeout '%s': %w", *c.RunTimeout, err)
		}
	}
	if c.FuelPricePerLiter != nil && *c.FuelPricePerLiter < 0 {
		return fmt.Errorf("fuel_price_per_liter must be non-negative, got %f", *c.FuelPricePerLiter)
	}
	if c.CO2PerLiter != nil && *c.CO2PerLiter < 0 {
		return fmt.Errorf("co2_per_liter must be non-negative, got %f", *c.CO2PerLiter)
	}
	if c.FuelEnergyDensity != nil && *c.FuelEnergyDensity <= 0 {
		return fmt.Errorf("fuel_energy_density must be positive, got %f", *c.FuelEnergyDensity)
	}
	if c.PeakWindow != nil && *c.PeakWindow <= 0 {
		return fmt.Errorf("peak_window must be positive, got %d", *c.PeakWindow)
	}
	return nil
}

// Constants returns the physical constants, defaulting unset fields.
func (c *SimConfig) Constants() physics.Constants {
	d := physics.DefaultConstants()
	return physics.Constants{
		AirDensity:             orFloat(c.AirDensity, d.AirDensity),
		AirViscosity:           orFloat(c.AirViscosity, d.AirViscosity),
		Gravity:                orFloat(c.Gravity, d.Gravity),
		RollingResistanceCoeff: orFloat(c.RollingResistanceCoeff, d.RollingResistanceCoeff),
		FuelDensity:            orFloat(c.FuelDensity, d.FuelDensity),
		HeatingValue:           orFloat(c.HeatingValue, d.HeatingValue),
	}
}

// AnalysisOptions returns the analysis parameters, defaulting unset fields.
func (c *SimConfig) AnalysisOptions() stats.AnalysisOptions {
	return stats.AnalysisOptions{
		FuelPricePerLiter: orFloat(c.FuelPricePerLiter, stats.DefaultFuelPricePerLiter),
		CO2PerLiter:       orFloat(c.CO2PerLiter, stats.DefaultCO2PerLiter),
		FuelEnergyDensity: orFloat(c.FuelEnergyDensity, stats.DefaultFuelEnergyDensity),
		PeakWindow:        c.GetPeakWindow(),
	}
}

// EngineOptions returns the sim options carried by this config.
func (c *SimConfig) EngineOptions() []sim.Option {
	return []sim.Option{
		sim.WithConstants(c.Constants()),
		sim.WithTimeStep(c.GetTimeStep()),
		sim.WithProgressInterval(c.GetProgressInterval()),
	}
}

// GetTimeStep returns the time_step value or the default.
func (c *SimConfig) GetTimeStep() float64 {
	return orFloat(c.TimeStep, sim.DefaultTimeStep)
}

// GetProgressInterval returns the progress_interval value or the default.
func (c *SimConfig) GetProgressInterval() int {
	if c.ProgressInterval == nil {
		return sim.DefaultProgressInterval
	}
	return *c.ProgressInterval
}

// GetRunTimeout parses and returns RunTimeout as a time.Duration.
func (c *SimConfig) GetRunTimeout() time.Duration {
	if c.RunTimeout == nil || *c.RunTimeout == "" {
		return defaultRunTimeout
	}
	d, err := time.ParseDuration(*c.RunTimeout)
	if err != nil {
		return defaultRunTimeout // default on parse error
	}
	return d
}

// GetPeakWindow returns the peak_window value or the default.
func (c *SimConfig) GetPeakWindow() int {
	if c.PeakWindow == nil {
		return stats.DefaultPeakWindow
	}
	return *c.PeakWindow
}

// GetOutputDir returns the output_dir value or the default.
func (c *SimConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return defaultOutputDir
	}
	return *c.OutputDir
}

func orFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
