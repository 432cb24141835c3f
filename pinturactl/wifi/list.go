package wifi

import (
	"fmt"

	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/austinelec/pintura-link/pkg/pintura"
	"github.com/spf13/cobra"
)

type scannedNetwork struct {
	SSID   string `json:"ssid" yaml:"ssid"`
	Signal int    `json:"signal" yaml:"signal"` // dBm
	Level  int    `json:"level" yaml:"level"`   // 1..5
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Scan for WiFi networks visible to the display",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("wifi")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		gw, err := options.GatewayClient(ctx, log)
		if err != nil {
			return err
		}

		list, err := gw.FetchNetworks(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("no networks found")
			return nil
		}

		out := make([]scannedNetwork, 0, len(list))
		for _, n := range list {
			out = append(out, scannedNetwork{
				SSID:   n.SSID,
				Signal: n.Signal,
				Level:  pintura.SignalLevel(n.Signal),
			})
		}
		return options.PrintResult(out)
	},
}
