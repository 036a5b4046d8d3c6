// podctl es la CLI de operación de idhealth: valida la configuración y
// consulta el pod de un usuario con los mismos servicios que el API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"idhealth/internal/config"
	"idhealth/internal/domain/profiles"
	"idhealth/internal/platform/logger"
	"idhealth/internal/ports/pod"
	"idhealth/internal/router"

	"github.com/spf13/cobra"
)

var (
	webID   string
	token   string
	timeout time.Duration
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "podctl",
	Short:         "Operate on IDHealth pods",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&webID, "webid", "", "WebID of the user whose pod is queried")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("IDHEALTH_ACCESS_TOKEN"), "Solid-OIDC access token (or set IDHEALTH_ACCESS_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(measurementsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(trainingCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session agrupa lo que necesita un subcomando para hablar con un pod.
type session struct {
	cfg     config.Config
	svcs    router.Services
	profile profiles.Profile
	log     logger.Logger
	cleanup func()
}

func newLogger() logger.Logger {
	level := logger.Warn
	if verbose {
		level = logger.Debug
	}
	return logger.New(logger.Options{Level: level, Format: logger.FormatText, App: "podctl"})
}

// openBackends carga la config y abre los backends sin resolver ningún perfil.
func openBackends(ctx context.Context) (context.Context, *session, error) {
	cfg, err := config.Load()
	if err != nil {
		return ctx, nil, err
	}
	log := newLogger()

	opts, cleanup, err := router.FromConfig(ctx, cfg, log)
	if err != nil {
		return ctx, nil, err
	}

	if t := strings.TrimSpace(token); t != "" {
		ctx = pod.WithAccessToken(ctx, t)
	}

	return ctx, &session{cfg: cfg, svcs: router.NewServices(opts), log: log, cleanup: cleanup}, nil
}

// openSession abre los backends y resuelve el perfil de --webid.
func openSession(ctx context.Context) (context.Context, *session, error) {
	if strings.TrimSpace(webID) == "" {
		return ctx, nil, fmt.Errorf("--webid is required")
	}

	ctx, s, err := openBackends(ctx)
	if err != nil {
		return ctx, nil, err
	}

	p, err := s.svcs.Profiles.Resolve(ctx, webID)
	if err != nil {
		s.cleanup()
		return ctx, nil, fmt.Errorf("resolve profile: %w", err)
	}
	s.profile = p
	return ctx, s, nil
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
