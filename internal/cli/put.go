package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samm329-ui/businessIntelligence-sub004/internal/cache"
)

// newPutCmd creates the put command storing a report under a query.
func newPutCmd() *cobra.Command {
	var (
		data string
		file string
	)

	cmd := &cobra.Command{
		Use:   "put <query>",
		Short: "Store a JSON report under a query",
		Long: "Stores a JSON document as the cached report for the given query. " +
			"The payload comes from --data, --file, or stdin when neither is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd, data, file)
			if err != nil {
				return err
			}

			var doc any
			if err := json.Unmarshal(payload, &doc); err != nil {
				return fmt.Errorf("payload is not valid JSON: %w", err)
			}

			c, cfg, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			query := strings.Join(args, " ")
			if err := c.Set(cmd.Context(), query, doc); err != nil {
				return err
			}

			cmd.Printf("Stored entry %s (expires in %dd)\n",
				cache.DeriveKey(query), cfg.Cache.TTLDays)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "inline JSON payload")
	cmd.Flags().StringVar(&file, "file", "", "read the JSON payload from a file")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	return cmd
}

func readPayload(cmd *cobra.Command, data, file string) ([]byte, error) {
	switch {
	case data != "":
		return []byte(data), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading payload file: %w", err)
		}
		return b, nil
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("no payload: use --data, --file, or pipe JSON on stdin")
		}
		return b, nil
	}
}
