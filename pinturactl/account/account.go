package account

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/internal/cloud"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/spf13/cobra"
)

var loginFlags struct {
	password string
	region   string
	areaCode string
	endpoint string
}

func init() {
	LoginCmd.Flags().StringVarP(&loginFlags.password, "password", "p", "", "account password (prompted when omitted)")
	LoginCmd.Flags().StringVar(&loginFlags.region, "region", "", "account region, e.g. CN or US (default from config)")
	LoginCmd.Flags().StringVar(&loginFlags.areaCode, "area-code", "", "dialing code for phone accounts, e.g. 86")
	LoginCmd.Flags().StringVar(&loginFlags.endpoint, "endpoint", "", "override the cloud endpoint (development clusters)")
}

var LoginCmd = &cobra.Command{
	Use:   "login <account>",
	Short: "Log in to the Pintura cloud (phone number or email)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("account")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		st, err := options.OpenStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		client := cloud.NewClient(log, st)
		if loginFlags.endpoint != "" {
			if err := client.UseDevEndpoint(ctx, loginFlags.endpoint); err != nil {
				return err
			}
		}

		password := loginFlags.password
		if password == "" {
			fmt.Print("Password: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password required")
		}

		region := loginFlags.region
		if region == "" {
			region = options.Viper.GetString("cloud.region")
		}

		if err := client.Login(ctx, args[0], password, region, loginFlags.areaCode); err != nil {
			return err
		}
		fmt.Println("logged in")
		return nil
	},
}

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored cloud session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("account")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)

		st, err := options.OpenStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		return cloud.NewClient(log, st).Logout(ctx)
	},
}
