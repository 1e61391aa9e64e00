// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all simulation and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds every tunable of the combat simulation. All timing values
// are expressed in ticks so that identical input streams replay identically.
// Millisecond-denominated knobs (negative edge, motion leniency) are converted
// to ticks at load time using TickRate.
type SimConfig struct {
	TickRate int // Fixed simulation rate in Hz

	// Health and meter
	MaxHealth            int
	MaxMeter             int
	MeterGainOnHit       int // Granted to the attacker per confirmed hit (move may override)
	PassiveMeterInterval int // Ticks between passive +1 meter gains (0 disables)

	// Parry
	ParryWindowTicks   int // Length of an armed parry window
	ParryRecoveryTicks int // Lockout before the next parry attempt
	RedParryWindow     int // Remaining-window ticks that still qualify as a red parry
	ParryAdvantage     int // Defender frame advantage on a normal parry
	RedParryAdvantage  int // Defender frame advantage on a red parry
	ParryMeterReward   int
	ParryHealthReward  int

	// Stun
	HitstunBase      int
	HitstunScaling   float64
	BlockstunBase    int
	BlockstunScaling float64
	ChipRatio        float64 // Fraction of base damage dealt through block

	// Combo damage scaling
	ScalingStart  int     // Combo hit count at which scaling begins
	ScalingRate   float64 // Multiplier applied per hit past ScalingStart
	MinimumDamage float64 // Scaled damage never drops below base*MinimumDamage
	ComboDecay    int     // Ticks without a hit before a combo resets

	// Input
	SOCDPolicy     string // "neutral" or "last"
	NegativeEdgeMs int    // Release-counts-as-press window
	LeniencyQCFMs  int    // Motion leniency windows per motion type
	LeniencyQCBMs  int
	LeniencyDPMs   int

	// Movement
	WalkSpeed float64 // Units moved per tick while walking
}

// DefaultSim returns the default simulation configuration.
// These defaults reproduce genre-standard timing at 60 Hz.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:             60,
		MaxHealth:            1000,
		MaxMeter:             100,
		MeterGainOnHit:       5,
		PassiveMeterInterval: 60, // +1 meter per second

		ParryWindowTicks:   7,
		ParryRecoveryTicks: 12,
		RedParryWindow:     2,
		ParryAdvantage:     15,
		RedParryAdvantage:  30,
		ParryMeterReward:   15,
		ParryHealthReward:  5,

		HitstunBase:      16,
		HitstunScaling:   1.0,
		BlockstunBase:    12,
		BlockstunScaling: 1.0,
		ChipRatio:        0.1,

		ScalingStart:  3,
		ScalingRate:   0.9,
		MinimumDamage: 0.1,
		ComboDecay:    180, // 3 seconds at 60 Hz

		SOCDPolicy:     "neutral",
		NegativeEdgeMs: 60,
		LeniencyQCFMs:  250,
		LeniencyQCBMs:  250,
		LeniencyDPMs:   220,

		WalkSpeed: 3.0,
	}
}

// SimFromEnv returns simulation configuration with environment overrides.
// Environment variables take precedence over defaults.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if v := getEnvInt("SIM_TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvInt("SIM_MAX_HEALTH", 0); v > 0 {
		cfg.MaxHealth = v
	}
	if v := getEnvInt("SIM_MAX_METER", 0); v > 0 {
		cfg.MaxMeter = v
	}
	if v := getEnvInt("SIM_PARRY_WINDOW", 0); v > 0 {
		cfg.ParryWindowTicks = v
	}
	if v := getEnvInt("SIM_PARRY_RECOVERY", 0); v > 0 {
		cfg.ParryRecoveryTicks = v
	}
	if v := getEnvInt("SIM_RED_PARRY_WINDOW", 0); v > 0 {
		cfg.RedParryWindow = v
	}
	if v := getEnvInt("SIM_COMBO_DECAY", 0); v > 0 {
		cfg.ComboDecay = v
	}
	if v := getEnvFloat("SIM_SCALING_RATE", -1); v > 0 && v <= 1 {
		cfg.ScalingRate = v
	}
	if v := getEnvInt("SIM_SCALING_START", 0); v > 0 {
		cfg.ScalingStart = v
	}
	if v := getEnvInt("SIM_NEGATIVE_EDGE_MS", 0); v > 0 {
		cfg.NegativeEdgeMs = v
	}
	if p := os.Getenv("SIM_SOCD_POLICY"); p == "neutral" || p == "last" {
		cfg.SOCDPolicy = p
	}

	return cfg
}

// MsToTicks converts a millisecond window into whole ticks at the configured
// rate, rounding up so a window never silently shrinks to zero.
func (c SimConfig) MsToTicks(ms int) int {
	ticks := (ms*c.TickRate + 999) / 1000
	if ticks < 1 {
		ticks = 1
	}
	return ticks
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits controls DoS protection and snapshot sizing.
type ResourceLimits struct {
	MaxFighters  int // Hard cap on combat slots per match
	MaxHitboxes  int // Active hitbox cap (projectile flooding)
	MaxHurtboxes int
	MaxEvents    int // Outbound events retained per tick drain
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxFighters:  8,
		MaxHitboxes:  32,
		MaxHurtboxes: 16,
		MaxEvents:    256,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	EventLogPath string
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:         3000,
		EventLogPath: "combat-events.jsonl",
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if path := os.Getenv("EVENT_LOG_PATH"); path != "" {
		cfg.EventLogPath = path
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Server ServerConfig
	Limits ResourceLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Server: ServerFromEnv(),
		Limits: DefaultLimits(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
