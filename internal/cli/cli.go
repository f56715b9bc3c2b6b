package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vk/assetgrid/internal/app"
	"github.com/vk/assetgrid/internal/contextfile"
	"github.com/vk/assetgrid/internal/render"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// ASSETGRID_BASE_URL for --base-url.
const EnvPrefix = "ASSETGRID"

// Version is reported by --version.
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// operation is an App method run by a subcommand.
type operation func(a *app.App, ctx context.Context) error

// NewRootCommand builds the command tree. Results go to outW, logs and
// diagnostics to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "assetgrid",
		Short: "Resolve context-gated asset manifests",
		Long: `assetgrid loads a catalog of scripts, styles and body classes, seals it
into a registry and resolves the ordered manifest for one request context.

Without --catalog the built-in catalog is used.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.StringSlice("catalog", nil, "catalog .hcl files or directories (default: built-in catalog)")
	flags.String("context", "", "request context file (.yaml, .json or .properties)")
	flags.String("page", "", "override the page classification")
	flags.String("page-id", "", "override the page id")
	flags.Bool("logged-in", false, "override the logged-in state")
	flags.StringToString("option", nil, "override an option, key=value")
	flags.StringSlice("flag", nil, "set a feature flag")
	flags.StringToString("query-var", nil, "override a query variable, key=value")
	flags.String("base-url", "", "base URL prefixed to asset locations")
	flags.String("asset-version", "", "default asset version")
	flags.Bool("debug", false, "select unminified assets")
	flags.StringP("output", "o", "json", "output format: json, yaml or table")
	flags.StringP("query", "q", "", "jq program applied to the output")
	flags.String("log-format", "text", "log output format: text or json")
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	_ = v.BindPFlags(flags)

	root.AddCommand(
		newOperationCommand(v, outW, errW, "resolve", "Print the ordered manifest for a context", (*app.App).Resolve),
		newOperationCommand(v, outW, errW, "classes", "Print the body classes for a context", (*app.App).Classes),
		newOperationCommand(v, outW, errW, "validate", "Load, seal and dry-resolve the catalog", (*app.App).Validate),
	)
	return root
}

func newOperationCommand(v *viper.Viper, outW, errW io.Writer, use, short string, op operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromViper(v)
			if err != nil {
				return err
			}
			slog.Debug("CLI parser finished successfully.", "command", use)
			a := app.NewApp(outW, errW, cfg)
			return op(a, cmd.Context())
		},
	}
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return usageError(fmt.Errorf("failed to read config file: %w", err))
	}
	slog.Debug("Config file loaded.", "path", v.ConfigFileUsed())
	return nil
}

// configFromViper merges flags, environment and config file into a
// validated app.Config.
func configFromViper(v *viper.Viper) (*app.Config, error) {
	overrides := contextfile.Overrides{
		Page:    v.GetString("page"),
		PageID:  v.GetString("page-id"),
		Options: v.GetStringMapString("option"),
		Query:   v.GetStringMapString("query-var"),
	}
	if v.IsSet("logged-in") {
		loggedIn := v.GetBool("logged-in")
		overrides.LoggedIn = &loggedIn
	}
	if names := v.GetStringSlice("flag"); len(names) > 0 {
		overrides.Flags = make(map[string]bool, len(names))
		for _, name := range names {
			overrides.Flags[name] = true
		}
	}

	cfg, err := app.NewConfig(app.Config{
		CatalogPaths: v.GetStringSlice("catalog"),
		ContextPath:  v.GetString("context"),
		Overrides:    overrides,
		BaseURL:      v.GetString("base-url"),
		Version:      v.GetString("asset-version"),
		Debug:        v.GetBool("debug"),
		Output:       render.Format(strings.ToLower(v.GetString("output"))),
		Query:        v.GetString("query"),
		LogFormat:    strings.ToLower(v.GetString("log-format")),
		LogLevel:     strings.ToLower(v.GetString("log-level")),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// Execute runs the command tree against args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) && isUsageError(err) {
		return usageError(err)
	}
	return err
}

// isUsageError recognizes cobra's argument and command errors, which are
// not routed through the flag error func.
func isUsageError(err error) bool {
	return strings.HasPrefix(err.Error(), "unknown command")
}
