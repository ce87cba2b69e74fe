package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stubkit/stubd/pkg/config"
	"github.com/stubkit/stubd/pkg/engine"
	"github.com/stubkit/stubd/pkg/logging"
)

var (
	servePort      int
	serveConfig    string
	serveLogLevel  string
	serveLogFormat string
	serveLogFile   string
	serveStubDirs  []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stub server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultServerConfiguration()
		if serveConfig != "" {
			loaded, err := config.LoadFile(serveConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}

		// Flags win over file and environment when set.
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}
		if serveLogLevel != "" {
			cfg.LogLevel = serveLogLevel
		}
		if serveLogFormat != "" {
			cfg.LogFormat = serveLogFormat
		}
		if serveLogFile != "" {
			cfg.LogFile = serveLogFile
		}
		if len(serveStubDirs) > 0 {
			cfg.StubDirs = append(cfg.StubDirs, serveStubDirs...)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		format, err := logging.ParseFormat(cfg.LogFormat)
		if err != nil {
			return err
		}
		log := logging.New(logging.Config{
			Level:  level,
			Format: format,
			File:   cfg.LogFile,
		})

		srv := engine.NewServer(cfg,
			engine.WithServerLogger(log),
			engine.WithVersion(Version),
		)
		if err := srv.Start(); err != nil {
			return err
		}
		log.Info("stubd ready", "addr", srv.Addr(), "version", Version)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "Path to a config file (YAML or JSON)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format (text, json)")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Write logs to a rotated file instead of stderr")
	serveCmd.Flags().StringArrayVar(&serveStubDirs, "stub-dir", nil, "Directory of stub definition files (repeatable)")
	rootCmd.AddCommand(serveCmd)
}
