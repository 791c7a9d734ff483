package site

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tstromberg/smokypeaks/pkg/contact"
	"github.com/tstromberg/smokypeaks/pkg/gallery"
	"github.com/tstromberg/smokypeaks/pkg/planner"
	"k8s.io/klog/v2"
)

// Config holds configuration for the site.
type Config struct {
	Addr              string
	Title             string
	ImageCap          int
	CarouselInterval  time.Duration
	ContactResetDelay time.Duration
	ContactTo         string
	SMTP              contact.SMTPConfig
	GeminiAPIKey      string
	GeminiModel       string
	PhotoDir          string
	OutDir            string
	AssetDir          string
	SessionIdle       time.Duration
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Addr:              "localhost:12800",
		Title:             "Smoky Peaks Cabins",
		ImageCap:          gallery.DefaultCap,
		CarouselInterval:  gallery.DefaultInterval,
		ContactResetDelay: contact.DefaultResetDelay,
		ContactTo:         "anxybear@gmail.com",
		GeminiModel:       planner.DefaultModel,
		SessionIdle:       30 * time.Minute,
	}
}

type fileConfig struct {
	Addr              string             `toml:"addr"`
	Title             string             `toml:"title"`
	ImageCap          int                `toml:"image_cap"`
	CarouselInterval  string             `toml:"carousel_interval"`
	ContactResetDelay string             `toml:"contact_reset_delay"`
	ContactTo         string             `toml:"contact_to"`
	SMTP              contact.SMTPConfig `toml:"smtp"`
	GeminiAPIKey      string             `toml:"gemini_api_key"`
	GeminiModel       string             `toml:"gemini_model"`
	PhotoDir          string             `toml:"photos"`
	OutDir            string             `toml:"out"`
	AssetDir          string             `toml:"assets"`
	SessionIdle       string             `toml:"session_idle"`
}

// LoadConfig overlays the TOML file at path onto c.
func LoadConfig(path string, c Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	for _, k := range meta.Undecoded() {
		klog.Warningf("%s: unknown key %q", path, k.String())
	}

	str := func(key string, v string, dst *string) {
		if meta.IsDefined(key) {
			*dst = strings.TrimSpace(v)
		}
	}
	str("addr", raw.Addr, &c.Addr)
	str("title", raw.Title, &c.Title)
	str("contact_to", raw.ContactTo, &c.ContactTo)
	str("gemini_api_key", raw.GeminiAPIKey, &c.GeminiAPIKey)
	str("gemini_model", raw.GeminiModel, &c.GeminiModel)
	str("photos", raw.PhotoDir, &c.PhotoDir)
	str("out", raw.OutDir, &c.OutDir)
	str("assets", raw.AssetDir, &c.AssetDir)

	if meta.IsDefined("image_cap") {
		if raw.ImageCap <= 0 {
			return Config{}, fmt.Errorf("image_cap must be positive, got %d", raw.ImageCap)
		}
		c.ImageCap = raw.ImageCap
	}
	if meta.IsDefined("smtp") {
		c.SMTP = raw.SMTP
	}

	durations := []struct {
		key string
		v   string
		dst *time.Duration
	}{
		{"carousel_interval", raw.CarouselInterval, &c.CarouselInterval},
		{"contact_reset_delay", raw.ContactResetDelay, &c.ContactResetDelay},
		{"session_idle", raw.SessionIdle, &c.SessionIdle},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.v))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return c, nil
}
