package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/webotron/webotron"
	"github.com/webotron/webotron/config"
	"github.com/webotron/webotron/internal/telemetry"
	"github.com/webotron/webotron/logging"
)

var (
	cfgFile string

	// connect builds the session commands talk to S3 through.
	connect = webotron.Connect

	// exit is replaced in tests.
	exit = os.Exit

	stopTelemetry telemetry.ShutdownFunc
)

var rootCmd = &cobra.Command{
	Use:   "webotron",
	Short: "Deploy static websites to S3",
	Long: `Webotron creates S3 buckets configured for static website hosting and
uploads local directory trees to them.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmd.Annotations = make(map[string]string)
		cmd.Annotations["error"] = ""

		logging.ReloadGlobalLogger()

		if config.TelemetryEnabled.Bool() {
			stop, err := telemetry.Start(cmd.Context())
			if err != nil {
				log.Error().
					Err(err).
					Msg("Failed to start telemetry")
				return
			}
			stopTelemetry = stop
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopTelemetry != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := stopTelemetry(ctx); err != nil {
				log.Error().
					Err(err).
					Msg("Failed to stop telemetry")
			}
			cancel()
			stopTelemetry = nil
		}

		logging.Flush()

		if cmd.Annotations["error"] != "" {
			exit(1)
		}
	},
}

// Execute runs the command line until completion or an interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.webotron/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "AWS shared config profile")
	rootCmd.PersistentFlags().String("region", "", "AWS region new buckets are created in (default us-east-1)")
	rootCmd.PersistentFlags().String("endpoint", "", "S3 compatible endpoint URL")

	bindFlag("aws.profile", rootCmd.PersistentFlags().Lookup("profile"))
	bindFlag("aws.region", rootCmd.PersistentFlags().Lookup("region"))
	bindFlag("aws.endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
}

func initConfig() {
	if err := config.InitConfig(cfgFile); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	webotron.Reload()
}

// fail marks the command as failed and reports err to the user.
func fail(cmd *cobra.Command, err error) {
	cmd.Annotations["error"] = err.Error()

	log.Error().
		Err(err).
		Str("command", cmd.Name()).
		Msg("Command failed")

	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
}

// session connects to S3, failing the command when that is not possible.
func session(cmd *cobra.Command) (*webotron.Session, bool) {
	s, err := connect(cmd.Context())
	if err != nil {
		fail(cmd, err)
		return nil, false
	}

	return s, true
}
