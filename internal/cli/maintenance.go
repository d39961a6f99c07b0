package cli

import (
	"bufio"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// newCleanupCmd creates the cleanup command running one expiration sweep.
func newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired entries and orphaned blobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			res, err := c.Cleanup(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Removed %d expired entries (%s freed)\n",
				res.DeletedCount, humanize.IBytes(uint64(res.FreedBytes)))
			if res.OrphansRemoved > 0 {
				cmd.Printf("Reclaimed %d orphaned blob files\n", res.OrphansRemoved)
			}
			return nil
		},
	}
}

// newClearCmd creates the clear command removing every cache entry.
func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			entries := c.Stats().TotalEntries
			if !yes && !confirm(cmd, "Remove all cached entries? [y/N] ") {
				cmd.Println("Aborted.")
				return nil
			}

			if err := c.Clear(cmd.Context()); err != nil {
				return err
			}
			cmd.Printf("Cleared %d entries\n", entries)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// newDeleteCmd creates the delete command for a single query.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <query>",
		Short: "Remove the cached entry for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			query := strings.Join(args, " ")
			removed, err := c.Delete(cmd.Context(), query)
			if err != nil {
				return err
			}
			if removed {
				cmd.Printf("Removed cached entry for %q\n", query)
			} else {
				cmd.Printf("No cached entry for %q\n", query)
			}
			return nil
		},
	}
}

// newWarmupCmd creates the warmup command probing which queries would miss.
func newWarmupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warmup <query>...",
		Short: "Report which queries are absent from the cache",
		Long: "Probes the cache without computing anything. Queries reported as " +
			"missing are candidates for pre-fetching by the dashboard's report pipeline.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			missing, err := c.Warmup(cmd.Context(), args)
			if err != nil {
				return err
			}

			cmd.Printf("%d of %d queries cached\n", len(args)-len(missing), len(args))
			for _, q := range missing {
				cmd.Printf("missing: %s\n", q)
			}
			return nil
		},
	}
}

// confirm reads a yes/no answer from the command's stdin.
func confirm(cmd *cobra.Command, prompt string) bool {
	cmd.Print(prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
