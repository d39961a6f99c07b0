package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newGetCmd creates the get command fetching a cached report by query.
func newGetCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "get <query>",
		Short: "Fetch the cached report for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := openCache(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			query := strings.Join(args, " ")
			res, err := c.Get(cmd.Context(), query)
			if err != nil {
				return err
			}
			if !res.FromCache {
				return fmt.Errorf("no cached entry for %q", query)
			}

			if raw {
				cmd.Println(string(res.Data))
				return nil
			}

			var buf bytes.Buffer
			if err := json.Indent(&buf, res.Data, "", "  "); err != nil {
				cmd.Println(string(res.Data))
				return nil
			}
			cmd.Println(buf.String())
			cmd.PrintErrf("age: %s, hits: %d\n", formatAge(res.Age), res.HitCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the stored JSON without reformatting")
	return cmd
}
