package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var columnsCmd = &cobra.Command{
	Use:   "columns FILE",
	Short: "List the column names of a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := readUpload(args[0])
		if err != nil {
			return err
		}

		columns, err := newService().Columns(cmd.Context(), file)
		if err != nil {
			return err
		}
		for _, c := range columns {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}
