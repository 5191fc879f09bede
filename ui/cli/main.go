// Copyright (c) 2026 Keymaster Team
// Credmaster - harvested credential management
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for credmaster using the Cobra
// library. It defines the root command, its persistent flags, service setup
// shared by subcommands and the main entry point for execution.

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/toeirei/credmaster/buildvars"
	"github.com/toeirei/credmaster/internal/config"
	"github.com/toeirei/credmaster/internal/db"
	"github.com/toeirei/credmaster/internal/i18n"
	"github.com/toeirei/credmaster/internal/logging"
)

var version = buildvars.VersionOrDefault("dev") // set by the linker through buildvars
var gitCommit = "dev"                          // set at build time with the short commit SHA
var buildDate = ""                             // set at build time (RFC3339)
var cfgFile string
var verbose bool

var appConfig config.Config
var appStore *db.Store

// setupDefaultServices loads configuration, configures logging and i18n and
// opens the store. It is idempotent within one process.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.LoadConfig[config.Config](cmd.Root(), config.Defaults(), configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	writeDefaultConfig(configPath)

	logging.Configure(nil, appConfig.Log.Level)
	if verbose {
		logging.SetDebug(true)
		db.SetDebug(true)
	}
	i18n.Init(appConfig.Language)

	if appStore != nil {
		return nil
	}
	store, err := db.Open(cmd.Context(), appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return fmt.Errorf("%s: %w", i18n.T("config.error_init_db"), err)
	}
	appStore = store
	return nil
}

// writeDefaultConfig persists the built-in defaults on first run so users
// have a file to edit. Flag and environment overrides stay out of it.
func writeDefaultConfig(explicit *string) {
	if explicit != nil {
		return
	}
	path, err := config.GetConfigPath(false)
	if err != nil {
		return
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return
	}
	defaults, err := config.DefaultsOf[config.Config](config.Defaults())
	if err != nil {
		logging.Warnf("could not build default config: %v", err)
		return
	}
	if err := config.WriteConfigFile(&defaults, false); err != nil {
		logging.Warnf("could not write default config file: %v", err)
		return
	}
	logging.Infof("%s", i18n.T("config.wrote_default", path))
}

// closeServices releases the store opened by setupDefaultServices.
func closeServices() {
	if appStore == nil {
		return
	}
	if err := appStore.Close(); err != nil {
		logging.Errorf("closing database: %v", err)
	}
	appStore = nil
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	defer closeServices()
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	flag := cmd.Root().PersistentFlags().Lookup("config")
	if flag == nil || !flag.Changed || cfgFile == "" {
		return nil, nil
	}
	// Make sure the user-provided file exists to avoid unwanted behavior.
	if _, err := os.Stat(cfgFile); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	path := cfgFile
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. Tests use it
// to get fresh, isolated command trees.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credmaster",
		Short: "Credmaster manages credentials harvested during security assessments.",
		Long: `Credmaster keeps usernames, passwords, hashes and keys collected during an
engagement in a database, scoped per workspace. The creds command lists,
filters, exports and deletes them; creds add records new ones by hand.`,
		SilenceUsage: true,
	}

	v, c, d := resolveBuildVersion(nil)
	compositeVersion := v
	if c != "" && c != "dev" {
		compositeVersion = compositeVersion + " (" + c + ")"
	}
	if d != "" {
		compositeVersion = compositeVersion + " built: " + d
	}
	cmd.Version = compositeVersion

	defaults := config.Defaults()
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (includes database logs)")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().StringP("workspace", "w", defaults["workspace"].(string), "Workspace to operate on (created on first use)")
	cmd.PersistentFlags().String("database.type", defaults["database.type"].(string), "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", defaults["database.dsn"].(string), "Database connection string (DSN)")
	cmd.PersistentFlags().String("language", defaults["language"].(string), `Message language ("en", "de")`)
	cmd.PersistentFlags().String("log.level", defaults["log.level"].(string), "Log level (debug, info, warn, error)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "version: %s\n", v)
			_, _ = fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				_, _ = fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}

	cmd.AddCommand(
		newCredsCmd(),
		newWorkspaceCmd(),
		versionCmd,
	)
	return cmd
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record our module among the dependencies.
		if resolvedVersion == "dev" || resolvedVersion == "(devel)" {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/credmaster" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort show the commit provided via ldflags.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}
