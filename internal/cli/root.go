// Package cli implements pinctl, a command line client for the device
// control API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	keyBaseURL = "device.base_url"
	keyTimeout = "device.timeout"
	keyVerbose = "verbose"
)

// ClientFactory builds the device client used by every command.
type ClientFactory func(cfg devapi.Config, logger *zap.Logger) (devapi.DeviceClient, error)

type app struct {
	v         *viper.Viper
	out       io.Writer
	newClient ClientFactory
	logger    *zap.Logger
}

func defaultClientFactory(cfg devapi.Config, logger *zap.Logger) (devapi.DeviceClient, error) {
	return devapi.CreateDeviceClient(cfg, logger, nil)
}

// NewRootCommand returns the pinctl command tree writing results to out.
// A nil factory uses the HTTP client.
func NewRootCommand(out io.Writer, factory ClientFactory) *cobra.Command {
	if factory == nil {
		factory = defaultClientFactory
	}
	a := &app{
		v:         viper.New(),
		out:       out,
		newClient: factory,
	}
	a.v.SetEnvPrefix("irpin")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault(keyTimeout, 5*time.Second)

	rootCmd := &cobra.Command{
		Use:   "pinctl",
		Short: "pinctl - GPIO and IR device client",
		Long: `pinctl talks to the HTTP/JSON control API of a GPIO/IR microcontroller.

The device address is taken from --url or IRPIN_DEVICE_BASE_URL. Use the
address "debug" to print the requests that would be sent.`,
		Version:       versioninfo.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initLogger()
		},
	}
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.String("url", "", "device base url, e.g. http://192.168.1.50/ (env IRPIN_DEVICE_BASE_URL)")
	flags.Duration("timeout", 5*time.Second, "request timeout (env IRPIN_DEVICE_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "log requests to stderr")
	_ = a.v.BindPFlag(keyBaseURL, flags.Lookup("url"))
	_ = a.v.BindPFlag(keyTimeout, flags.Lookup("timeout"))
	_ = a.v.BindPFlag(keyVerbose, flags.Lookup("verbose"))

	rootCmd.AddCommand(
		a.readCommand(),
		a.readPinsCommand(),
		a.writeCommand(),
		a.writePinsCommand(),
		a.modeCommand(),
		a.busyCommand(),
		a.statusCommand(),
		a.sendIRCommand(),
		a.ledCommand(),
		a.ledsCommand(),
		a.watchCommand(),
	)
	return rootCmd
}

// Execute runs pinctl and exits with code 1 on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(os.Stdout, nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) initLogger() error {
	if !a.v.GetBool(keyVerbose) {
		a.logger = zap.NewNop()
		return nil
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func (a *app) client() (devapi.DeviceClient, error) {
	baseURL := a.v.GetString(keyBaseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("no device url: use --url or IRPIN_DEVICE_BASE_URL")
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a.newClient(devapi.Config{
		BaseURL:     baseURL,
		Timeout:     a.v.GetDuration(keyTimeout),
		DebugOutput: a.out,
	}, a.logger)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	return enc.Encode(v)
}

// printResult prints v unless the client runs against the debug address,
// which already wrote the request to the output.
func (a *app) printResult(v any) error {
	if devapi.IsDebugBaseURL(a.v.GetString(keyBaseURL)) {
		return nil
	}
	return a.printJSON(v)
}
