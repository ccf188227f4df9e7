package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/templategen"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write a blank upload workbook with sample rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, _ := cmd.Flags().GetString("domain")
		domain, err := model.ParseDomain(s)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = templategen.DefaultFilename(domain)
		}
		if err := templategen.Save(output, domain); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "wrote", output)
		return nil
	},
}

func init() {
	templateCmd.Flags().String("domain", string(model.DomainInstrument), "upload domain (budget or instrument)")
	templateCmd.Flags().StringP("output", "o", "", "output path (default depends on domain)")
	rootCmd.AddCommand(templateCmd)
}
