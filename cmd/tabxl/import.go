package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adnsv/tabxl"
	"github.com/adnsv/tabxl/internal/config"
	"github.com/adnsv/tabxl/internal/logger"
	"github.com/adnsv/tabxl/xlsread"
)

func newImportCmd() *cobra.Command {
	var (
		configPath string
		outputPath string
		header     bool
		types      bool
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "import [input.xlsx|input.csv]",
		Short: "Read a workbook into a JSON data set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithLogger(cmd.Context(), map[string]any{"cmd": "import"})

			if configPath == "" {
				configPath = config.DefaultEnvConfig.ReaderConfigPath
			}
			cfg, err := readerConfig(configPath, header, types)
			if err != nil {
				return err
			}
			if cfg.CSVEncoding == "" {
				cfg.CSVEncoding = config.DefaultEnvConfig.CSVEncoding
			}

			ds, err := tabxl.ReadFileContext(ctx, args[0], cfg)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			var data []byte
			if pretty {
				data, err = json.MarshalIndent(ds, "", "  ")
			} else {
				data, err = json.Marshal(ds)
			}
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}

			if outputPath == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML reader configuration (default: $TABXL_READER_CONFIG)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&header, "header", false, "Take column names from the first row")
	cmd.Flags().BoolVar(&types, "types", false, "Infer int32, decimal and bool columns")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	return cmd
}

// readerConfig loads the YAML configuration at path, or builds one from the
// flags when path is empty.
func readerConfig(path string, header, types bool) (*xlsread.Config, error) {
	if path != "" {
		rf, err := config.LoadReaderFile(path)
		if err != nil {
			return nil, err
		}
		return rf.ReaderConfig(), nil
	}
	return &xlsread.Config{
		UseColumnDataType: types,
		ConfigureTable: func(string) xlsread.TableConfig {
			tc := xlsread.DefaultTableConfig()
			tc.UseHeaderRow = header
			return tc
		},
	}, nil
}
