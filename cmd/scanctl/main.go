package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parcel-tracker/app/bootstrap"
	"github.com/parcel-tracker/app/config"
	"github.com/parcel-tracker/app/services"
	"github.com/parcel-tracker/internal/scanner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "scanctl",
		Short: "Parcel Tracker label scanning tools",
		Long:  `Run the label matching engine offline and manage the address directory`,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(createNormalizeCmd())
	rootCmd.AddCommand(createExtractCmd())
	rootCmd.AddCommand(createScanCmd())
	rootCmd.AddCommand(createSeedCmd())
	rootCmd.AddCommand(createReindexCmd())
	rootCmd.AddCommand(createResetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readText lấy text từ args, "-" hoặc không có args thì đọc stdin
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("đọc stdin: %w", err)
	}
	return string(data), nil
}

// createNormalizeCmd in text đã normalize
func createNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [text]",
		Short: "Normalize raw OCR text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			engine, err := scanner.NewScanner()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), engine.Normalize(text))
			return nil
		},
	}
}

// createExtractCmd in address token và route code trích xuất được
func createExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract address token and route code from raw OCR text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			engine, err := scanner.NewScanner()
			if err != nil {
				return err
			}
			normalized, extraction := engine.Extract(text)
			return printJSON(cmd, map[string]interface{}{
				"normalized": normalized,
				"extraction": extraction,
			})
		},
	}
}

// createScanCmd chạy một lần scan trên snapshot JSON, không cần store thật
func createScanCmd() *cobra.Command {
	var (
		snapshotFile string
		subDistrict  string
		village      string
		expected     string
		manual       string
	)

	cmd := &cobra.Command{
		Use:   "scan [text]",
		Short: "Scan a label against a directory snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := bootstrap.LoadSeedFile(snapshotFile)
			if err != nil {
				return err
			}
			engine, err := scanner.NewScanner()
			if err != nil {
				return err
			}

			svc := services.NewScanService(engine, services.NewMemoryDirectoryService(records), newLogger())
			ctx := context.Background()

			var result *services.ScanResult
			if manual != "" {
				result, err = svc.ScanManual(ctx, scanner.ScanInput{
					ManualAddress: manual,
					SubDistrict:   subDistrict,
					Village:       village,
				})
			} else {
				text, readErr := readText(cmd, args)
				if readErr != nil {
					return readErr
				}
				result, err = svc.ScanText(ctx, scanner.ScanInput{
					Text:              text,
					ExpectedRouteCode: expected,
					SubDistrict:       subDistrict,
					Village:           village,
				})
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "JSON file with address records")
	cmd.Flags().StringVar(&subDistrict, "sub-district", "", "selected sub-district")
	cmd.Flags().StringVar(&village, "village", "", "selected village")
	cmd.Flags().StringVar(&expected, "expected", "", "expected route code")
	cmd.Flags().StringVar(&manual, "manual", "", "manual address, skips OCR text")
	_ = cmd.MarkFlagRequired("snapshot")
	_ = cmd.MarkFlagRequired("sub-district")

	return cmd
}

// withComponents load config và dựng collaborator cho các lệnh thao tác trên store thật
func withComponents(run func(ctx context.Context, c *bootstrap.Components, logger *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Sync()

	ctx := context.Background()
	components, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	return run(ctx, components, logger)
}

// createSeedCmd nạp record từ file JSON vào store đã cấu hình, bỏ qua record trùng
func createSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [filename]",
		Short: "Load address records from a JSON file into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := bootstrap.LoadSeedFile(args[0])
			if err != nil {
				return err
			}

			return withComponents(func(ctx context.Context, c *bootstrap.Components, logger *zap.Logger) error {
				svc := services.NewParcelService(c.Directory, c.Cache, c.DirectoryIndex(), logger)

				created, skipped := 0, 0
				for i := range records {
					if _, err := svc.Create(ctx, &records[i]); err != nil {
						if errors.Is(err, services.ErrDuplicateAddress) {
							skipped++
							continue
						}
						return fmt.Errorf("seed %q: %w", records[i].Address, err)
					}
					created++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d duplicates\n", created, skipped)
				return nil
			})
		},
	}
}

// createReindexCmd dựng lại Meilisearch index từ store
func createReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the directory search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(func(ctx context.Context, c *bootstrap.Components, logger *zap.Logger) error {
				admin := services.NewAdminService(c.Directory, c.Cache, c.DirectoryIndex(), c.ScanLogs, logger)
				result, err := admin.Reindex(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}

// createResetCmd đưa mọi record về Pending
func createResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear loaded flags and parcel counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withComponents(func(ctx context.Context, c *bootstrap.Components, logger *zap.Logger) error {
				svc := services.NewParcelService(c.Directory, c.Cache, c.DirectoryIndex(), logger)
				count, err := svc.Reset(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "reset %d records\n", count)
				return nil
			})
		},
	}
}
