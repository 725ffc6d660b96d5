package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timetable/internal/adapters/spreadsheet"
)

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template <out.xlsx>",
		Short: "Write an empty import workbook with the expected header",
		Args:  cobra.ExactArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := spreadsheet.WriteTemplate(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", args[0])
			return nil
		},
	}
}
