package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qwikbyte/datacore"
	"github.com/qwikbyte/datacore/internal/config"
	"github.com/qwikbyte/datacore/internal/formatter"
)

var (
	configPath string
	driver     string
	dsn        string
	schemaName string
	poolSize   int
	verbose    bool

	tables string
	format string
)

var rootCmd = &cobra.Command{
	Use:   "datacore",
	Short: "Inspect and verify DataCore-managed databases",
	Long: `DataCore keeps entity tables in step with their Go definitions at
registration time. This tool connects with the same configuration the
application uses, so operators can verify connectivity and inspect the live
column catalog of synchronized tables.`,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify database connectivity",
	RunE:  runPing,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [tables...]",
	Short: "Print the live column catalog of one or more tables",
	RunE:  runInspect,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: $DATACORE_CONFIG, then ./datacore.yaml)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "Database driver: postgres, mysql, or sqlite3")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Connection string (postgres://..., mysql://..., or sqlite://...)")
	rootCmd.PersistentFlags().StringVarP(&schemaName, "schema", "s", "", "Database schema for catalog lookups")
	rootCmd.PersistentFlags().IntVar(&poolSize, "pool-size", 0, "Maximum pooled connections")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity")

	inspectCmd.Flags().StringVarP(&tables, "tables", "t", "", "Tables to inspect (comma-separated)")
	inspectCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or markdown")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(inspectCmd)
}

// loadConfig merges the config file with flag overrides.
func loadConfig() (datacore.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return datacore.Config{}, err
	}
	if driver != "" {
		cfg.Driver = driver
	}
	if dsn != "" {
		cfg.DSN = dsn
	}
	if schemaName != "" {
		cfg.Schema = schemaName
	}
	if poolSize > 0 {
		cfg.PoolSize = poolSize
	}
	return cfg, nil
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func connect(ctx context.Context) (*datacore.Core, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	core, err := datacore.Open(ctx, cfg, datacore.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return core, nil
}

func runPing(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	core, err := connect(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	if err := core.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "database reachable (%s)\n", core.DriverName())
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	names := append(parseTableList(tables), args...)
	if len(names) == 0 {
		return fmt.Errorf("at least one table is required (arguments or --tables)")
	}

	f, err := formatter.ForName(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx := context.Background()
	core, err := connect(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	rendered := make([]formatter.Table, 0, len(names))
	for _, name := range names {
		catalog, err := core.TableColumns(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", name, err)
		}
		rendered = append(rendered, formatter.FromCatalog(name, catalog))
	}
	return f.Format(rendered)
}

// parseTableList splits a comma-separated table list, trimming whitespace
// and dropping empty entries.
func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
