package device

import (
	"fmt"

	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "device",
	Short: "Query and control the display itself",
}

func init() {
	Cmd.AddCommand(idCmd)
	Cmd.AddCommand(syncCmd)
	Cmd.AddCommand(resetMenuCmd)
}

var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Print the display's screen identifier",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("device")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		gw, err := options.GatewayClient(ctx, log)
		if err != nil {
			return err
		}
		id, err := gw.DeviceID(ctx)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Force an immediate cloud synchronization",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("device")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		gw, err := options.GatewayClient(ctx, log)
		if err != nil {
			return err
		}
		res, err := gw.ForceCloudSync(ctx)
		if err != nil {
			return err
		}
		return options.PrintResult(res)
	},
}

var resetMenuCmd = &cobra.Command{
	Use:   "reset-menu",
	Short: "Open the display's on-screen recovery menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("device")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		gw, err := options.GatewayClient(ctx, log)
		if err != nil {
			return err
		}
		res, err := gw.ResetMenu(ctx)
		if err != nil {
			return err
		}
		return options.PrintResult(res)
	},
}
