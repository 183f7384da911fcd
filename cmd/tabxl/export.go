package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/adnsv/tabxl/internal/config"
	"github.com/adnsv/tabxl/internal/logger"
	"github.com/adnsv/tabxl/table"
	"github.com/adnsv/tabxl/xl"
)

func newExportCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		dumpDir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON data set as an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logger.WithLogger(cmd.Context(), map[string]any{"cmd": "export"})

			ds, err := readDataSet(inputPath, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read data set: %w", err)
			}

			appName := config.DefaultEnvConfig.AppName
			if dumpDir != "" {
				wb, err := xl.Build(ds)
				if err != nil {
					return err
				}
				wb.AppName = appName
				if err := xl.NewWriter(xl.NewDirStorage(dumpDir)).Write(wb); err != nil {
					return fmt.Errorf("failed to dump parts: %w", err)
				}
				logger.DebugLog(ctx, "parts written to %s", dumpDir)
			}

			var bb bytes.Buffer
			if err := xl.WriteDataSet(&bb, ds, appName); err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, bb.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			logger.InfoLog(ctx, "wrote %s (%d tables, %d bytes)", outputPath, len(ds.Tables), bb.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "JSON data set to read, - for stdin")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Workbook file to write")
	cmd.Flags().StringVar(&dumpDir, "dump-dir", "", "Also write the unzipped package parts to this directory")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func readDataSet(path string, stdin io.Reader) (*table.DataSet, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var ds table.DataSet
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}
