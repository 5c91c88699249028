// Package cli builds the searchctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nimburion/searchcriteria/pkg/config"
	"github.com/nimburion/searchcriteria/pkg/observability/logger"
	"github.com/nimburion/searchcriteria/pkg/store"
)

// ClientFactory creates the search client used by backend commands.
type ClientFactory func(cfg config.SearchConfig, log logger.Logger) (store.SearchClient, error)

// CommandOptions configures the searchctl command tree.
type CommandOptions struct {
	Name        string
	Description string
	ConfigPath  string
	EnvPrefix   string

	// Optional: defaults to store.NewSearchClient.
	ClientFactory ClientFactory

	// Optional: default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath          string
	secretFilePath      string
	envPrefix           string
	serviceNameOverride string
	output              string
}

// NewCommand creates the CLI with compile, translate, search, aggregate,
// healthcheck, version and config subcommands.
func NewCommand(opts CommandOptions) *cobra.Command {
	if opts.Name == "" {
		opts.Name = "searchctl"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = "SEARCHCTL"
	}
	if opts.ClientFactory == nil {
		opts.ClientFactory = store.NewSearchClient
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	rootCmd := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)

	flags := &globalFlags{}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config-file", "c", opts.ConfigPath, "config file path")
	pf.StringVar(&flags.secretFilePath, "secret-file", "", "path to secrets file (sets <ENV_PREFIX>_SECRETS_FILE)")
	pf.StringVar(&flags.envPrefix, "env-prefix", opts.EnvPrefix, "prefix of configuration environment variables")
	pf.StringVar(&flags.serviceNameOverride, "service-name", "", "service name override")
	pf.StringVarP(&flags.output, "output", "o", outputJSON, "output format: json or yaml")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		_, err := parseOutputFormat(flags.output)
		return err
	}

	env := &environment{opts: opts, flags: flags}
	rootCmd.AddCommand(
		newCompileCommand(env),
		newTranslateCommand(env),
		newSearchCommand(env),
		newAggregateCommand(env),
		newHealthcheckCommand(env),
		newVersionCommand(env),
		newConfigCommand(env),
	)

	rootCmd.CompletionOptions.DisableDefaultCmd = false
	rootCmd.InitDefaultCompletionCmd()
	return rootCmd
}

// environment carries what subcommands need to load configuration and print.
type environment struct {
	opts  CommandOptions
	flags *globalFlags
}

func (e *environment) envPrefix() string {
	return resolveEnvPrefix(e.flags.envPrefix)
}

func (e *environment) write(cmd *cobra.Command, v any) error {
	format, err := parseOutputFormat(e.flags.output)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, v)
}

// loadConfig resolves configuration with secrets. The secrets config is
// returned for redaction.
func (e *environment) loadConfig() (*config.Config, *config.Config, error) {
	if err := applySecretFileFlag(e.envPrefix(), e.flags.secretFilePath); err != nil {
		return nil, nil, err
	}
	cfg, secrets, err := config.NewViperLoader(e.flags.configPath, e.envPrefix()).
		WithServiceNameDefault(e.opts.Name).
		LoadWithSecrets()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	applyResolvedServiceName(cfg, e.opts.Name, e.flags.serviceNameOverride)
	return cfg, secrets, nil
}

// LoadConfigAndLogger loads configuration and builds the zap logger writing to
// errOut.
func LoadConfigAndLogger(
	cfgPath,
	envPrefix,
	secretFilePath string,
	defaultServiceName string,
	serviceNameOverride string,
	errOut io.Writer,
) (*config.Config, logger.Logger, error) {
	env := &environment{
		opts: CommandOptions{Name: defaultServiceName},
		flags: &globalFlags{
			configPath:          cfgPath,
			secretFilePath:      secretFilePath,
			envPrefix:           envPrefix,
			serviceNameOverride: serviceNameOverride,
		},
	}
	cfg, secrets, err := env.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg, errOut)
	if err != nil {
		return nil, nil, err
	}
	logConfigIfDebug(log, cfg, secrets)
	return cfg, log, nil
}

func newLogger(cfg *config.Config, errOut io.Writer) (*logger.ZapLogger, error) {
	log, err := logger.NewZapLogger(logger.Config{
		Level:  logger.LogLevel(cfg.Observability.LogLevel),
		Format: logger.LogFormat(cfg.Observability.LogFormat),
		Name:   "searchctl",
		Fields: []any{"service", cfg.Service.Name},
		Output: errOut,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log, nil
}

func applySecretFileFlag(envPrefix, secretFilePath string) error {
	if secretFilePath == "" {
		return nil
	}
	info, err := os.Stat(secretFilePath)
	if err != nil {
		return fmt.Errorf("secret file %s is not accessible: %w", secretFilePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("secret file %s must not be a directory", secretFilePath)
	}
	return os.Setenv(resolveEnvPrefix(envPrefix)+"_SECRETS_FILE", filepath.Clean(secretFilePath))
}

// Execute runs the command and exits with appropriate code.
func Execute(ctx context.Context, cmd *cobra.Command) {
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

func logConfigIfDebug(log *logger.ZapLogger, cfg, secrets *config.Config) {
	if log == nil || cfg == nil || !log.Enabled(logger.DebugLevel) {
		return
	}
	log.Debug("effective configuration", "config", cfg.Redacted(secrets))
}

func resolveEnvPrefix(prefix string) string {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return "SEARCHCTL"
	}
	return strings.ToUpper(trimmed)
}

func applyResolvedServiceName(cfg *config.Config, defaultServiceName, serviceNameOverride string) {
	if cfg == nil {
		return
	}
	cfg.Service.Name = resolveServiceNameValue(cfg.Service.Name, defaultServiceName, serviceNameOverride)
}

func resolveServiceNameValue(currentConfigName, defaultServiceName, serviceNameOverride string) string {
	if override := strings.TrimSpace(serviceNameOverride); override != "" {
		return override
	}
	if configured := strings.TrimSpace(currentConfigName); configured != "" {
		return configured
	}
	if fallback := strings.TrimSpace(defaultServiceName); fallback != "" {
		return fallback
	}
	return "searchctl"
}
