package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"stravagpx/internal/logging"
	"stravagpx/internal/store"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "List exported activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.configPath()
			if err != nil {
				return err
			}
			st, err := store.Open(path, logging.NewNop())
			if err != nil {
				return err
			}
			defer st.Close()

			exports := st.Exports()
			out := cmd.OutOrStdout()
			if len(exports) == 0 {
				fmt.Fprintln(out, "No activities exported yet")
				return nil
			}
			if limit > 0 && len(exports) > limit {
				exports = exports[:limit]
			}

			rows := make([][]string, 0, len(exports))
			for _, e := range exports {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					e.StartDate.UTC().Format(time.RFC3339),
					e.Name,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Start", "Name"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries (0 for all)")
	return cmd
}
