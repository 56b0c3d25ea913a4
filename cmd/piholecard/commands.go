package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/pihole-card-core/internal/api"
	"github.com/nerrad567/pihole-card-core/internal/card"
	"github.com/nerrad567/pihole-card-core/internal/hass"
	"github.com/nerrad567/pihole-card-core/internal/infrastructure/config"
)

// newRootCmd builds the command tree. Without a subcommand the service runs.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "piholecard",
		Short: "Pi-hole dashboard card backend",
		Long: `piholecard mirrors Pi-hole devices from a home-automation host over MQTT,
assembles them into the dashboard card's setup and serves it over HTTP and
WebSocket.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", getConfigPath(),
		"path to the YAML config file (env PIHOLECARD_CONFIG)")

	root.AddCommand(
		newServeCmd(&configPath),
		newSetupCmd(&configPath),
		newTokenCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the service until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), *configPath)
		},
	}
}

// setupOutput is printed by the setup command.
type setupOutput struct {
	Setup   *card.SetupRecord `json:"setup"`
	Summary card.Summary      `json:"summary"`
}

func newSetupCmd(configPath *string) *cobra.Command {
	var (
		snapshotPath string
		deviceIDs    []string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Assemble the card setup once and print it as JSON",
		Long: `Assemble the card setup from a snapshot and print it as JSON.

The snapshot is read from --snapshot when given, otherwise from the
configured database. --device overrides the configured device list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfigOrDefault(cmd, *configPath)
			if err != nil {
				return err
			}
			if len(deviceIDs) > 0 {
				cfg.Card.DeviceID = card.DeviceIDs(deviceIDs)
			}

			var snap *hass.Snapshot
			if snapshotPath != "" {
				snap, err = readSnapshot(snapshotPath)
			} else {
				snap, err = loadStoredSnapshot(cmd, cfg)
			}
			if err != nil {
				return err
			}

			setup, _ := card.AssembleSetup(snap, &cfg.Card)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(setupOutput{Setup: setup, Summary: card.Summarize(setup)})
		},
	}
	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "JSON snapshot file (states, entities, devices)")
	cmd.Flags().StringSliceVarP(&deviceIDs, "device", "d", nil, "device ID to show (repeatable)")
	return cmd
}

func newTokenCmd(configPath *string) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfigOrDefault(cmd, *configPath)
			if err != nil {
				return err
			}
			token, err := api.IssueToken(cfg.Security.JWT, subject, ttl)
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dashboard", "token subject, shown in logs")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "piholecard %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

// loadConfigOrDefault loads the config file. When the file is missing and
// --config was not given explicitly, built-in defaults are used.
func loadConfigOrDefault(cmd *cobra.Command, path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && !cmd.Flags().Changed("config") {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// readSnapshot decodes a JSON snapshot file. Rows keyed by ID may omit the
// ID inside the row.
func readSnapshot(path string) (*hass.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	snap := hass.NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}

	for id, st := range snap.States {
		if st.EntityID == "" {
			st.EntityID = id
			snap.States[id] = st
		}
	}
	for id, e := range snap.Entities {
		if e.EntityID == "" {
			e.EntityID = id
			snap.Entities[id] = e
		}
	}
	for id, d := range snap.Devices {
		if d.ID == "" {
			d.ID = id
			snap.Devices[id] = d
		}
	}
	return snap, nil
}

// loadStoredSnapshot reads the registry mirror from the configured database.
func loadStoredSnapshot(cmd *cobra.Command, cfg *config.Config) (*hass.Snapshot, error) {
	db, err := openDatabase(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, err
	}
	defer db.Close() //nolint:errcheck // Read-only use

	snap, err := hass.NewSQLiteRepository(db.DB).LoadSnapshot(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}
