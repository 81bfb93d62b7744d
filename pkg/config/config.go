package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/bsink/internal/events"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel    string      `yaml:"log_level" default:"info"`
	Features    Features    `yaml:"features"`
	Timeouts    Timeouts    `yaml:"timeouts"`
	Volume      Volume      `yaml:"volume"`
	TTS         TTS         `yaml:"tts"`
	Pairing     Pairing     `yaml:"pairing"`
	Persist     Persist     `yaml:"persist"`
	Indications Indications `yaml:"indications"`
}

// Features are the configuration-derived booleans. They are read-only once loaded.
type Features struct {
	Multipoint                   bool `yaml:"multipoint" default:"false"`
	SecurePairing                bool `yaml:"secure_pairing" default:"true"`
	VoicePromptPairing           bool `yaml:"voice_prompt_pairing" default:"false"`
	ManInTheMiddle               bool `yaml:"man_in_the_middle" default:"false"`
	AutoReconnectPowerOn         bool `yaml:"auto_reconnect_power_on" default:"true"`
	PairIfPDLEmpty               bool `yaml:"pair_if_pdl_empty" default:"true"`
	RemainDiscoverableAtAllTimes bool `yaml:"remain_discoverable" default:"false"`
	EncryptionRefresh            bool `yaml:"encryption_refresh" default:"true"`
	MuteReminder                 bool `yaml:"mute_reminder" default:"true"`
	ELRampFitted                 bool `yaml:"el_ramp_fitted" default:"true"`
	VibrationFitted              bool `yaml:"vibration_fitted" default:"true"`
	AccelFitted                  bool `yaml:"accel_fitted" default:"false"`
	SubwooferFitted              bool `yaml:"subwoofer_fitted" default:"false"`
	FMFitted                     bool `yaml:"fm_fitted" default:"false"`
	DisplayFitted                bool `yaml:"display_fitted" default:"false"`
	PowerOffEnabledAtBoot        bool `yaml:"power_off_enabled_at_boot" default:"true"`
	DisableLimboOnCharger        bool `yaml:"disable_limbo_on_charger" default:"false"`
	AutoAnswer                   bool `yaml:"auto_answer" default:"false"`
	LEDsEnabledAtBoot            bool `yaml:"leds_enabled_at_boot" default:"true"`
	AudioPromptsEnabled          bool `yaml:"audio_prompts_enabled" default:"true"`
	ShowConnectedLEDs            bool `yaml:"show_connected_leds" default:"true"`
}

// Timeouts configure the deferred events. A zero duration disables the timer.
type Timeouts struct {
	AutoSwitchOff      time.Duration `yaml:"auto_switch_off" default:"600s"`
	Limbo              time.Duration `yaml:"limbo" default:"5s"`
	PairingMode        time.Duration `yaml:"pairing_mode" default:"120s"`
	Connectable        time.Duration `yaml:"connectable" default:"0s"`
	MuteReminder       time.Duration `yaml:"mute_reminder" default:"5s"`
	MissedCallInterval time.Duration `yaml:"missed_call_interval" default:"10s"`
	MissedCallRepeats  int           `yaml:"missed_call_repeats" default:"3"`
	EncryptionRefresh  time.Duration `yaml:"encryption_refresh" default:"900s"`
	LinkLossReconnect  time.Duration `yaml:"link_loss_reconnect" default:"10s"`
	LinkLossRetries    int           `yaml:"link_loss_retries" default:"6"`
	LEDTimeout         time.Duration `yaml:"led_timeout" default:"0s"`
	AvrcpRepeat        time.Duration `yaml:"avrcp_repeat" default:"1s"`
	ELPatternInterval  time.Duration `yaml:"el_pattern_interval" default:"250ms"`
	AccelSample        time.Duration `yaml:"accel_sample" default:"1s"`
	ToneDuration       time.Duration `yaml:"tone_duration" default:"300ms"`
}

// Volume configures the speaker volume steps.
type Volume struct {
	Levels  int `yaml:"levels" default:"16"`
	Default int `yaml:"default" default:"10"`
}

// TTS configures voice-prompt languages.
type TTS struct {
	Languages int `yaml:"languages" default:"1"`
}

// Pairing configures legacy pairing.
type Pairing struct {
	FixedPIN    string `yaml:"fixed_pin" default:"0000"`
	StoredDial  string `yaml:"stored_number" default:""`
	MaxPDLCount int    `yaml:"max_pdl" default:"8"`
}

// Persist locates the persisted session records.
type Persist struct {
	Path string `yaml:"path" default:""`
}

// LEDPattern is rendered by the LED engine for one event.
type LEDPattern struct {
	Color     string        `yaml:"color"`
	On        time.Duration `yaml:"on"`
	Off       time.Duration `yaml:"off"`
	Repeat    int           `yaml:"repeat"`
	SharedPIO bool          `yaml:"shared_pio"` // pattern drives the pin shared with the amplifier enable
}

// Duration is the total playback time of the pattern.
func (p LEDPattern) Duration() time.Duration {
	repeat := p.Repeat
	if repeat <= 0 {
		repeat = 1
	}
	return time.Duration(repeat) * (p.On + p.Off)
}

// Indications hold the per-event rendering tables keyed by user event name.
type Indications struct {
	LED  map[string]LEDPattern `yaml:"led"`
	Tone map[string]string     `yaml:"tone"`
	AT   map[string]string     `yaml:"at"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	cfg.Indications = DefaultIndications()
	return cfg
}

// DefaultIndications returns the stock indication tables.
func DefaultIndications() Indications {
	blink := func(color string, repeat int) LEDPattern {
		return LEDPattern{Color: color, On: 100 * time.Millisecond, Off: 100 * time.Millisecond, Repeat: repeat}
	}
	return Indications{
		LED: map[string]LEDPattern{
			"EventPowerOn":           blink("blue", 3),
			"EventPowerOff":          blink("red", 3),
			"EventEnterPairing":      {Color: "blue-red", On: 200 * time.Millisecond, Off: 200 * time.Millisecond, Repeat: 2},
			"EventPairingSuccessful": blink("blue", 2),
			"EventPairingFail":       blink("red", 2),
			"EventSLCConnected":      blink("blue", 1),
			"EventLinkLoss":          blink("red", 1),
			"EventLowBattery":        blink("red", 1),
			"EventMissedCall":        blink("purple", 2),
			"EventError":             {Color: "red", On: 500 * time.Millisecond, Repeat: 1, SharedPIO: true},
		},
		Tone: map[string]string{
			"EventPowerOn":             "power_on",
			"EventPowerOff":            "power_off",
			"EventEnterPairing":        "pairing",
			"EventPairingSuccessful":   "paired",
			"EventVolumeUp":            "vol_step",
			"EventVolumeDown":          "vol_step",
			"EventMuteReminder":        "mute_reminder",
			"EventMuteOn":              "mute_on",
			"EventMuteOff":             "mute_off",
			"EventMissedCall":          "missed_call",
			"EventLowBattery":          "battery_low",
			"EventError":               "error",
			"EventConfirmationRequest": "confirm",
		},
		AT: map[string]string{
			"EventPowerOn":           "+BSINK: POWER_ON",
			"EventPowerOff":          "+BSINK: POWER_OFF",
			"EventEnterPairing":      "+BSINK: PAIRING",
			"EventPairingSuccessful": "+BSINK: PAIRED",
			"EventSLCConnected":      "+BSINK: CONNECTED",
			"EventSLCDisconnected":   "+BSINK: DISCONNECTED",
			"EventLinkLoss":          "+BSINK: LINK_LOSS",
			"EventMissedCall":        "+BSINK: MISSED_CALL",
			"EventError":             "+BSINK: ERROR",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Volume.Levels <= 0 {
		return fmt.Errorf("volume.levels must be > 0")
	}
	if c.Volume.Default < 0 || c.Volume.Default >= c.Volume.Levels {
		return fmt.Errorf("volume.default must be in [0, %d), got %d", c.Volume.Levels, c.Volume.Default)
	}

	if c.TTS.Languages <= 0 {
		return fmt.Errorf("tts.languages must be > 0")
	}

	if c.Features.ELRampFitted && c.Timeouts.ELPatternInterval <= 0 {
		return fmt.Errorf("timeouts.el_pattern_interval must be > 0 when the EL ramp is fitted")
	}
	if c.Timeouts.MissedCallRepeats < 0 || c.Timeouts.LinkLossRetries < 0 {
		return fmt.Errorf("repeat counts must not be negative")
	}

	tables := map[string][]string{
		"led":  keys(c.Indications.LED),
		"tone": keys(c.Indications.Tone),
		"at":   keys(c.Indications.AT),
	}
	for table, names := range tables {
		for _, name := range names {
			if _, err := events.ParseUserEvent(name); err != nil {
				return fmt.Errorf("indications.%s: %w", table, err)
			}
		}
	}

	return nil
}

// ParseLogLevel maps a configured level name to a logrus level.
func ParseLogLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info", "":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", level)
	}
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, _ := ParseLogLevel(c.LogLevel)
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
