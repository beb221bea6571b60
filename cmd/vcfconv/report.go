package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/xls2vcard/internal/core"
)

var reportCmd = &cobra.Command{
	Use:   "report [FILE]",
	Short: "Render a PDF contact report",
	Long: `Report renders contacts as a paginated PDF. Contacts come either from a
spreadsheet projected with the usual mapping flags, or with --json from a
file holding {"contacts": [{name, email, phones, group}]}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contacts, err := reportContacts(cmd, args)
		if err != nil {
			return err
		}

		doc, err := newService().ExportPDF(cmd.Context(), contacts)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		return writeOutput(cmd, out, doc)
	},
}

func reportContacts(cmd *cobra.Command, args []string) ([]core.Contact, error) {
	jsonPath, _ := cmd.Flags().GetString("json")

	switch {
	case jsonPath != "" && len(args) > 0:
		return nil, errors.New("give either a spreadsheet or --json, not both")
	case jsonPath != "":
		data, err := os.ReadFile(jsonPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", jsonPath, err)
		}
		return core.ParseReportRequest(data)
	case len(args) == 0:
		return nil, errors.New("a spreadsheet or --json is required")
	}

	file, err := readUpload(args[0])
	if err != nil {
		return nil, err
	}
	req, err := convertRequest(cmd, file)
	if err != nil {
		return nil, err
	}
	p, err := newService().Project(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	return p.Contacts, nil
}

func init() {
	mappingFlags(reportCmd)
	reportCmd.Flags().String("json", "", "render pre-normalized contacts from a JSON file")
	reportCmd.Flags().StringP("output", "o", "contacts.pdf", `output file ("-" for stdout)`)

	rootCmd.AddCommand(reportCmd)
}
