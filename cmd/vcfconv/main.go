// Package main is the vcfconv command line converter. It runs the same
// conversions as the HTTP service against local files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JonMunkholm/xls2vcard/internal/core"
	"github.com/JonMunkholm/xls2vcard/internal/logging"
	"github.com/JonMunkholm/xls2vcard/internal/pdf"
	"github.com/JonMunkholm/xls2vcard/internal/table"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the vcfconv CLI.
var rootCmd = &cobra.Command{
	Use:   "vcfconv",
	Short: "Convert contact spreadsheets to vCard and PDF",
	Long: `vcfconv reads an .xlsx workbook or a CSV file, maps its columns to contact
fields and writes vCard 3.0 records or a PDF contact report.

Column mappings can be given inline as JSON or kept in a profile file:

  mapping: {first_name: First, last_name: Last, email: Mail, cell: Mobile}
  phones:  [{column: cell, label: mobile}]
  group:   Department
  label:   Work`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logging.New(os.Stderr, viper.GetString("log.level"), "text"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./vcfconv.yaml or ~/.config/vcfconv/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("title", core.DefaultReportTitle, "PDF report title")
	rootCmd.PersistentFlags().String("page-size", pdf.DefaultPageSize, "PDF page size: A3, A4, A5, Letter, Legal")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("report.title", rootCmd.PersistentFlags().Lookup("title"))
	_ = viper.BindPFlag("report.page_size", rootCmd.PersistentFlags().Lookup("page-size"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vcfconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "vcfconv"))
		}
	}

	viper.SetEnvPrefix("VCFCONV")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newService builds the conversion service from the CLI settings.
func newService() *core.Service {
	return core.NewService(
		table.Loader{},
		pdf.New(viper.GetString("report.page_size")),
		core.Options{ReportTitle: viper.GetString("report.title"), MaxConcurrent: 1},
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
