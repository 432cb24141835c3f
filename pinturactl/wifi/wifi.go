package wifi

import (
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "wifi",
	Short: "Provision the display's WiFi connection",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(connectCmd)
	Cmd.AddCommand(statusCmd)
}
