package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/container"
)

var flagOut string

var exportCmd = &cobra.Command{
	Use:   "export <event-id>",
	Short: "Write the budget workbook of an event",
	Long:  "Render the XLSX budget export. Without --out the file is stored in the export directory.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write the workbook to this path instead")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	eventID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || eventID <= 0 {
		return fmt.Errorf("invalid event id %q", args[0])
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	c, err := container.NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	if err := c.Start(cmd.Context()); err != nil {
		return err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Error("Shutdown finished with errors", zap.Error(err))
		}
	}()

	exports := c.Services().Exports
	if flagOut == "" {
		path, err := exports.ExportToStorage(cmd.Context(), eventID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	}

	file, err := exports.Export(cmd.Context(), eventID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(flagOut, file.Content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", flagOut, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), flagOut)
	return nil
}
