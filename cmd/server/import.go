package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timetable/internal/adapters/storage/reference"
	"timetable/internal/adapters/storage/schedule"
	"timetable/internal/application/orchestrators"
)

func newImportCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file.xlsx|file.xls>",
		Short: "Import schedule rows from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.log.WithContext(cmd.Context())

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			db, err := a.openDB(ctx, nil)
			if err != nil {
				return err
			}
			defer db.Close()
			conn, err := db.Conn(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := orchestrators.ExecuteImportSchedule(ctx,
				orchestrators.ImportScheduleInput{Data: data, DryRun: dryRun},
				orchestrators.ImportScheduleDeps{
					ScheduleStore:  schedule.NewSQLStore(conn),
					ReferenceStore: reference.NewSQLStore(conn),
				})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Summary())
			for _, msg := range result.ErrorMessages() {
				fmt.Fprintln(out, msg)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without saving them")
	return cmd
}
