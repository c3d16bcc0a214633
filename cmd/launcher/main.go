package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/api"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/bridge"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/config"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/models"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/process"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/tui"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/utils"
)

func mustApp(cfg *config.Config) *app {
	a, err := newApp(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize launcher: %v", err)
	}
	return a
}

func versionArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func logStage(u tui.StageUpdate) {
	switch u.State {
	case tui.StateDone:
		logger.Info("%s done (%d/%d files, %d bytes)", u.Kind, u.Progress.Finished, u.Progress.Total, u.Progress.Bytes)
	case tui.StateFailed:
		logger.Error("%s failed: %v", u.Kind, u.Error)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	utils.LoadEnvironment()
	logger.Init()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	rootCmd := &cobra.Command{
		Use:   "launcher",
		Short: "A game launcher that installs and verifies game versions",
		Long:  `launcher downloads version catalogs, manifests, libraries, assets and client jars, verifies them by SHA-1 and starts the game.`,
	}

	var releaseType string
	versionsCmd := &cobra.Command{
		Use:   "versions",
		Short: "List the versions in the catalog",
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()

			if err := a.loadCatalog(); err != nil {
				logger.Fatal("%v", err)
			}

			latest := a.take(a.bridge.LatestRelease())
			for i := 0; i < a.bridge.VersionCount(); i++ {
				id := a.take(a.bridge.VersionID(i))
				kind := a.take(a.bridge.VersionType(i))
				if releaseType != "all" && kind != releaseType {
					continue
				}
				marker := ""
				if id == latest {
					marker = " (latest)"
				}
				fmt.Printf("%-24s %s%s\n", id, kind, marker)
			}
		},
	}
	versionsCmd.Flags().StringVarP(&releaseType, "type", "t", string(models.ReleaseTypeRelease), "Release type to list (release, snapshot, old_beta, old_alpha or all)")

	installCmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Install or repair a version (default: latest release)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			start := time.Now()
			if err := a.install(ctx, versionArg(args), logStage); err != nil {
				logger.Fatal("Install failed: %v", err)
			}
			logger.Info("Installed %s in %s", a.bridge.Store().Manifest().ID, time.Since(start).Round(time.Millisecond))
		},
	}

	tuiCmd := &cobra.Command{
		Use:   "tui [version]",
		Short: "Install a version with an interactive progress monitor",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			logPath, err := logger.InitFileOnly(cfg.DataDir)
			if err != nil {
				logger.Fatal("Failed to initialize file logging: %v", err)
			}
			defer logger.Close()

			a := mustApp(cfg)
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			monitor := tui.NewInstallMonitor(a.bridge, versionArg(args))
			if err := monitor.Run(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Install failed: %v (see %s)\n", err, logPath)
				os.Exit(1)
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()

			ctx, stop := signalContext()
			defer stop()

			if err := api.NewServer(cfg.ListenAddr, a.bridge).Run(ctx); err != nil {
				logger.Error("API server failed: %v", err)
			}
		},
	}

	var jvm int
	playCmd := &cobra.Command{
		Use:   "play [version]",
		Short: "Install a version if needed and start the game",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()
			if jvm != bridge.DefaultJVM && (jvm < 0 || jvm >= a.bridge.JVMCount()) {
				logger.Fatal("No runtime at index %d (%d registered)", jvm, a.bridge.JVMCount())
			}

			ctx, stop := signalContext()
			if err := a.install(ctx, versionArg(args), logStage); err != nil {
				stop()
				logger.Fatal("Install failed: %v", err)
			}
			stop()

			opts := a.bridge.LaunchOptions(jvm, process.OfflineProfile(cfg.PlayerName))
			if jvm == bridge.DefaultJVM {
				opts.JavaPath = cfg.JavaPath
			}
			game, err := process.Launch(opts)
			if err != nil {
				logger.Fatal("Failed to launch the game: %v", err)
			}

			if err := game.WaitForExit(); err != nil {
				logger.Error("Error waiting for the game to exit: %v", err)
			}
		},
	}

	var limit, offset int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent tasks",
		Run: func(cmd *cobra.Command, args []string) {
			a := mustApp(cfg)
			defer a.Close()

			records, total, err := a.ledger.List(cmd.Context(), limit, offset)
			if err != nil {
				logger.Fatal("Failed to read task history: %v", err)
			}

			for _, rec := range records {
				finished := "-"
				if rec.FinishedAt != nil {
					finished = rec.FinishedAt.Sub(rec.StartedAt).Round(time.Millisecond).String()
				}
				fmt.Printf("%s  %-11s %-8s %-9s %-13s %s %s\n",
					rec.StartedAt.Local().Format(time.DateTime), rec.Kind, rec.Arg, rec.Status, bridge.Code(rec.Code), finished, rec.Error)
			}
			fmt.Printf("%d of %d tasks\n", len(records), total)
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of tasks to show")
	historyCmd.Flags().IntVarP(&offset, "offset", "", 0, "Number of tasks to skip")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfg.DataDir, "data-dir", "", cfg.DataDir, "Directory where game files are stored")
	flags.StringVarP(&cfg.DBPath, "db-path", "", cfg.DBPath, "Path of the task history database (default: <data-dir>/launcher.db)")
	flags.StringVarP(&cfg.CatalogURL, "catalog-url", "", cfg.CatalogURL, "URL of the version catalog")
	flags.StringVarP(&cfg.ResourcesURL, "resources-url", "", cfg.ResourcesURL, "Base URL of the asset object store")
	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "Maximum concurrent downloads per task")
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Number of task runtime workers")
	flags.DurationVarP(&cfg.HTTPTimeout, "http-timeout", "", cfg.HTTPTimeout, "Limit on metadata requests and on connecting to artifact servers (0 disables)")
	serveCmd.Flags().StringVarP(&cfg.ListenAddr, "listen", "l", cfg.ListenAddr, "Address the API listens on")
	playCmd.Flags().StringVarP(&cfg.JavaPath, "java", "j", cfg.JavaPath, "Path to the java executable")
	playCmd.Flags().StringVarP(&cfg.PlayerName, "name", "n", cfg.PlayerName, "Offline player name")
	playCmd.Flags().IntVarP(&jvm, "jvm", "", bridge.DefaultJVM, "Index of a registered runtime (see 'jvm list'); overrides --java")

	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(newJVMCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
