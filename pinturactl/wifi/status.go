package wifi

import (
	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the display's connection state once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("wifi")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		gw, err := options.GatewayClient(ctx, log)
		if err != nil {
			return err
		}
		status, err := gw.CheckStatus(ctx)
		if err != nil {
			return err
		}
		return options.PrintResult(map[string]string{"status": string(status)})
	},
}
