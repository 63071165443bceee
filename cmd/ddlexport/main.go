package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rocklab/ddlexport"
	"github.com/rocklab/ddlexport/internal/config"
	"github.com/rocklab/ddlexport/internal/errs"
	"github.com/rocklab/ddlexport/internal/logger"
)

var (
	cfgFile       string
	host          string
	port          int
	database      string
	user          string
	password      string
	schemaName    string
	outputFile    string
	tables        string
	excludeTables string
	dbURL         string
	mysqlURL      string
	sqlitePath    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "ddlexport",
	Short: "Export database DDL (table structures only)",
	Long: `ddlexport connects to a database, enumerates the base tables of a schema,
and writes one SQL document with a CREATE TABLE statement and the secondary
index definitions for every table. No data is exported.

Connection settings come from flags, DDLEXPORT_* environment variables, or a
yaml config file, in that order of precedence.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "Config file (yaml)")
	flags.StringVar(&host, "host", "127.0.0.1", "Database host")
	flags.IntVar(&port, "port", 5432, "Database port")
	flags.StringVar(&database, "database", "postgres", "Database name")
	flags.StringVar(&user, "user", "postgres", "Database user")
	flags.StringVar(&password, "password", "", "Database password")
	flags.StringVarP(&outputFile, "output-file", "o", "", "Output file path (default: stdout)")
	flags.StringVarP(&schemaName, "schema", "s", "public", "Database schema name")
	flags.StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	flags.StringVar(&excludeTables, "exclude-tables", "", "Tables to skip (comma-separated)")
	flags.StringVar(&dbURL, "db-url", "", "Full PostgreSQL connection URL (overrides connection flags)")
	flags.StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	flags.StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func run(cmd *cobra.Command, args []string) error {
	if mysqlURL != "" && sqlitePath != "" {
		return fmt.Errorf("only one of --mysql-url and --sqlite can be specified")
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	log := logger.New(&logger.Config{Level: level, Format: "console", Output: os.Stderr})

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)

	databaseURL := resolveDatabaseURL(cfg, dbURL, mysqlURL, sqlitePath)

	if verbose && mysqlURL == "" && sqlitePath == "" && dbURL == "" {
		log.Debugf("Connecting to %s:%d/%s as %s", cfg.Host, cfg.Port, cfg.Database, cfg.User)
	}

	opts := &ddlexport.Options{
		Tables:        parseTableList(tables),
		ExcludeTables: parseTableList(excludeTables),
		SchemaName:    cfg.Schema,
		Logger:        log,
	}

	outOpts := &ddlexport.OutputOptions{}
	if cfg.Output != "" {
		outOpts.Path = cfg.Output
	} else {
		outOpts.Writer = os.Stdout
	}

	count, err := ddlexport.Export(cmd.Context(), databaseURL, opts, outOpts)
	if err != nil {
		return err
	}

	if outOpts.Path != "" {
		log.Infof("DDL exported to: %s", outOpts.Path)
	}
	log.Infof("Successfully exported DDL for %d tables.", count)
	return nil
}

// applyFlags overlays explicitly set flags onto the loaded config. Unset
// flags keep whatever the environment or config file resolved.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("database") {
		cfg.Database = database
	}
	if flags.Changed("user") {
		cfg.User = user
	}
	if flags.Changed("password") {
		cfg.Password = password
	}
	if flags.Changed("schema") {
		cfg.Schema = schemaName
	}
	if flags.Changed("output-file") {
		cfg.Output = outputFile
	}
}

// resolveDatabaseURL picks the connection URL: an explicit engine override
// wins, otherwise the URL is built from the resolved postgres settings.
func resolveDatabaseURL(cfg *config.Config, dbURL, mysqlURL, sqlitePath string) string {
	switch {
	case sqlitePath != "":
		return "sqlite://" + sqlitePath
	case mysqlURL != "":
		return "mysql://" + strings.TrimPrefix(mysqlURL, "mysql://")
	case dbURL != "":
		return dbURL
	default:
		return cfg.URL()
	}
}

func parseTableList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	if len(list) == 0 {
		return nil
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errs.IsDatabase(err) {
			fmt.Fprintf(os.Stderr, "Database error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
