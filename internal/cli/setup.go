package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cache"
	"github.com/samm329-ui/businessIntelligence-sub004/internal/config"
	"github.com/samm329-ui/businessIntelligence-sub004/internal/logging"
)

// openCache loads configuration, applies CLI flag overrides, and opens the
// cache engine. Callers own the returned Cache and must Close it.
func openCache(cmd *cobra.Command) (*cache.Cache, *config.Config, error) {
	cfg := config.New()

	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		cfg.Cache.Directory = dir
	}
	if ttlDays, _ := cmd.Flags().GetInt("ttl-days"); ttlDays > 0 {
		cfg.Cache.TTLDays = ttlDays
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, nil, err
	}

	engineLogger := logging.ComponentLogger(logger, "cache")
	c, err := cache.New(cache.Options{
		Directory:       dir,
		TTL:             cfg.Cache.TTL(),
		CleanupInterval: cfg.Cache.CleanupInterval(),
		MaxSizeBytes:    cfg.Cache.MaxSizeBytes(),
		EnforceMaxSize:  cfg.Cache.EnforceMaxSize,
		Logger:          &engineLogger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache at %s: %w", dir, err)
	}
	return c, cfg, nil
}

// formatAge renders a duration in the compact form used across command
// output ("3d4h", "2h15m", "45s").
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		if h == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, h)
	}
}
