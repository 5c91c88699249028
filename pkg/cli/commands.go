package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimburion/searchcriteria/pkg/config"
	"github.com/nimburion/searchcriteria/pkg/configschema"
	"github.com/nimburion/searchcriteria/pkg/health"
	"github.com/nimburion/searchcriteria/pkg/version"
)

// errUnhealthy makes healthcheck exit non-zero after printing its report.
var errUnhealthy = errors.New("search backend is unhealthy")

func newHealthcheckCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check connectivity to the search backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := env.openBackend(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer b.Close(ctx)

			registry := health.NewRegistry()
			registry.Register(health.NewSearchChecker("search", b.client, b.cfg.Search.OperationTimeout,
				health.WithMetadata("type", b.cfg.Search.Type),
				health.WithMetadata("driver", b.cfg.Search.Driver),
			))
			result := registry.Check(ctx)
			if err := env.write(cmd, result); err != nil {
				return err
			}
			if result.Status == health.StatusUnhealthy {
				return errUnhealthy
			}
			return nil
		},
	}
}

func newVersionCommand(env *environment) *cobra.Command {
	var withCluster bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Current(env.opts.Name)
			if !withCluster {
				return env.write(cmd, info)
			}

			ctx := cmd.Context()
			b, err := env.openBackend(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer b.Close(ctx)

			cluster, err := b.client.ClusterInfo(ctx)
			if err != nil {
				return fmt.Errorf("read cluster info: %w", err)
			}
			info, err = info.WithCluster(cluster.Name, cluster.Distribution, cluster.Version, b.cfg.Search.LegacyTypes)
			if err != nil {
				return err
			}
			if info.Cluster.TypesMismatch {
				b.log.Warn("search.legacy_types does not match the cluster",
					"legacy_types", b.cfg.Search.LegacyTypes,
					"cluster_requires_types", info.Cluster.MappingTypes,
					"cluster_version", cluster.Version,
				)
			}
			return env.write(cmd, info)
		},
	}
	cmd.Flags().BoolVar(&withCluster, "cluster", false, "also report the search cluster version")
	return cmd
}

func newConfigCommand(env *environment) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := env.loadConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	})

	var showSecrets bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, secrets, err := env.loadConfig()
			if err != nil {
				return err
			}
			if showSecrets {
				secrets = nil
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.Redacted(secrets))
			return nil
		},
	}
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
	configCmd.AddCommand(showCmd)

	configCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults := config.DefaultConfig()
			defaults.Service.Name = resolveServiceNameValue("", env.opts.Name, env.flags.serviceNameOverride)
			schema, err := configschema.Build(defaults)
			if err != nil {
				return err
			}
			return env.write(cmd, schema)
		},
	})

	return configCmd
}
