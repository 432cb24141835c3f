package main

import (
	"fmt"
	"os"

	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/pinturactl/account"
	"github.com/austinelec/pintura-link/pinturactl/device"
	"github.com/austinelec/pintura-link/pinturactl/group"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/austinelec/pintura-link/pinturactl/wifi"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pinturactl",
	Short: "Provision and manage Pintura displays",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		hlog.InitWithDebug(options.Flags.Verbose, options.Flags.Debug)
		options.LoadConfig(hlog.Logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&options.Flags.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&options.Flags.Debug, "debug", false, "debug output")
	rootCmd.PersistentFlags().BoolVar(&options.Flags.Json, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&options.Flags.Config, "config", "", "config file (default: config.yaml in $XDG_CONFIG_HOME/pintura-link)")
	rootCmd.PersistentFlags().StringVarP(&options.Flags.Gateway, "gateway", "g", "", "device gateway host[:port] (default: mDNS discovery)")
	rootCmd.PersistentFlags().DurationVar(&options.Flags.CommandTimeout, "timeout", 0, "overall command timeout (0 = none)")
	rootCmd.PersistentFlags().DurationVar(&options.Flags.MdnsTimeout, "mdns-timeout", 0, "mDNS discovery timeout")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(wifi.Cmd)
	rootCmd.AddCommand(device.Cmd)
	rootCmd.AddCommand(account.LoginCmd)
	rootCmd.AddCommand(account.LogoutCmd)
	rootCmd.AddCommand(group.Cmd)
}

var Commit string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Commit)
	},
}
