package cli

import (
	"encoding/json"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cache"
)

// newStatusCmd creates the status command showing cache statistics.
func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cache statistics",
		Long: "Shows entry counts, disk usage before and after compression, the " +
			"approximate hit rate, entry age extremes, and the in-memory index footprint.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			stats := c.Stats()
			compression := c.CompressionStats()

			if asJSON {
				payload := struct {
					Directory   string                 `json:"directory"`
					Stats       cache.Stats            `json:"stats"`
					Compression cache.CompressionStats `json:"compression"`
				}{c.Directory(), stats, compression}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			}

			cmd.Printf("Cache directory:  %s\n", c.Directory())
			cmd.Printf("Entries:          %d\n", stats.TotalEntries)
			cmd.Printf("Payload size:     %s\n", humanize.IBytes(uint64(stats.TotalSizeBytes)))
			cmd.Printf("On disk:          %s\n", humanize.IBytes(uint64(stats.TotalCompressedBytes)))
			cmd.Printf("Compression:      %.1f%% saved\n", compression.Ratio*100)
			cmd.Printf("Hits:             %d (rate %.2f)\n", stats.TotalHits, stats.HitRate)
			cmd.Printf("Index memory:     %s\n", humanize.IBytes(uint64(stats.MemoryBytes)))

			now := time.Now()
			if stats.OldestEntry != nil {
				cmd.Printf("Oldest entry:     %s ago\n", formatAge(now.Sub(*stats.OldestEntry)))
			}
			if stats.NewestEntry != nil {
				cmd.Printf("Newest entry:     %s ago\n", formatAge(now.Sub(*stats.NewestEntry)))
			}
			if stats.TotalEntries == 0 {
				cmd.Println("Cache is empty.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit statistics as JSON")
	return cmd
}
