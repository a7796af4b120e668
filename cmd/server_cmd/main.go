package main

import (
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TEENet-io/xmr-bridge-go/cmd"
	"github.com/TEENet-io/xmr-bridge-go/logconfig"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "xmr-bridge",
		Short: "XMR to wXMR mint bridge",
		Long: `Settles wXMR mints for monero deposits.

Configuration is read from environment variables, or from the file named
by BRIDGE_CONFIG.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "debug logging on the terminal")

	root.AddCommand(newServeCommand(&debug))
	root.AddCommand(newInspectCommand())

	return root
}

func newServeCommand(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			v, err := cmd.NewViper()
			if err != nil {
				return err
			}
			bsc, err := cmd.LoadBridgeServerConfig(v)
			if err != nil {
				return err
			}

			if *debug {
				logconfig.ConfigDebugLogger()
			} else {
				closer := logconfig.ConfigProductionLogger(bsc.LogFile)
				defer closer.Close()
				logger.SetLevel(logconfig.ParseLevel(bsc.LogLevel))
			}

			logger.Info("starting bridge server, press Ctrl+C to stop")
			return cmd.StartBridgeServerAndWait(bsc)
		},
	}
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the pending and processed requests and the watermark",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			v, err := cmd.NewViper()
			if err != nil {
				return err
			}
			return cmd.Inspect(v, c.OutOrStdout())
		},
	}
}
