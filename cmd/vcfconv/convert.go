package main

import (
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert a spreadsheet to vCard 3.0",
	Long: `Convert maps every data row of FILE to one vCard record. The mapping comes
from --profile, --mapping or both; explicit flags override profile values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := readUpload(args[0])
		if err != nil {
			return err
		}
		req, err := convertRequest(cmd, file)
		if err != nil {
			return err
		}

		_, vcf, err := newService().ConvertVCard(cmd.Context(), req)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd, out, []byte(vcf))
	},
}

func init() {
	mappingFlags(convertCmd)
	convertCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(convertCmd)
}
