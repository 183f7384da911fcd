// Command tabxl converts between JSON data sets and .xlsx workbooks and
// serves the same conversions over HTTP.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/adnsv/tabxl/internal/config"
	"github.com/adnsv/tabxl/internal/logger"
	"github.com/adnsv/tabxl/xlsread/codepage"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:          "tabxl",
		Short:        "Convert tabular data to and from Excel workbooks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvConfig(envFiles...); err != nil {
				return err
			}
			logger.InitLogging(config.DefaultEnvConfig.LogFilePath, config.DefaultEnvConfig.LogLevel)
			codepage.Register()
			return nil
		},
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "Environment files to load (default: .env)")

	root.AddCommand(newExportCmd(), newImportCmd(), newServeCmd())
	return root
}
