package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sheetmetrics/internal/model"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "List recorded uploads, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		var domain model.Domain
		if s, _ := cmd.Flags().GetString("domain"); s != "" {
			d, err := model.ParseDomain(s)
			if err != nil {
				return err
			}
			domain = d
		}
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		uploads, err := st.ListUploads(ctx, domain, limit)
		if err != nil {
			return eris.Wrap(err, "uploads")
		}
		if len(uploads) == 0 {
			fmt.Fprintln(os.Stderr, "No uploads found.")
			return nil
		}
		formatUploads(os.Stdout, uploads)
		return nil
	},
}

func init() {
	uploadsCmd.Flags().String("domain", "", "only this domain (default all)")
	uploadsCmd.Flags().Int("limit", 20, "maximum uploads to list")
	rootCmd.AddCommand(uploadsCmd)
}
