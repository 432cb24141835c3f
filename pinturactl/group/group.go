package group

import (
	"context"
	"strconv"

	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/internal/cloud"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "group",
	Short: "Manage the screen groups of the logged-in account",
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(joinCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List screen groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("group")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		st, err := options.OpenStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		groups, err := cloud.NewClient(log, st).GroupList(ctx)
		if err != nil {
			return err
		}
		return options.PrintResult(groups)
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a screen group containing this display",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("group")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		st, err := options.OpenStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		screenID, err := currentScreenID(ctx, log)
		if err != nil {
			return err
		}
		return cloud.NewClient(log, st).GroupCreate(ctx, args[0], screenID)
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Add this display to an existing screen group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("group")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		groupID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}

		st, err := options.OpenStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		screenID, err := currentScreenID(ctx, log)
		if err != nil {
			return err
		}
		return cloud.NewClient(log, st).GroupJoin(ctx, groupID, screenID)
	},
}

// currentScreenID fetches the screen identifier from the device gateway: the
// group endpoints always operate on the display being provisioned.
func currentScreenID(ctx context.Context, log logr.Logger) (string, error) {
	gw, err := options.GatewayClient(ctx, log)
	if err != nil {
		return "", err
	}
	return gw.DeviceID(ctx)
}
