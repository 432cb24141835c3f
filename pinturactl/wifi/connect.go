package wifi

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/austinelec/pintura-link/hlog"
	"github.com/austinelec/pintura-link/internal/provision"
	"github.com/austinelec/pintura-link/pinturactl/options"
	"github.com/spf13/cobra"
)

var connectFlags struct {
	password string
	yes      bool
}

func init() {
	connectCmd.Flags().StringVarP(&connectFlags.password, "password", "p", "", "network password (prompted when omitted and not cached)")
	connectCmd.Flags().BoolVarP(&connectFlags.yes, "yes", "y", false, "skip the confirmation prompt")
}

var connectCmd = &cobra.Command{
	Use:   "connect [ssid]",
	Short: "Connect the display to a WiFi network",
	Long: `Scans for networks, pushes credentials to the display and follows the
connection progress until it succeeds or fails. Without an ssid argument the
strongest candidate is picked: a network with cached credentials first, the
first scanned network otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := hlog.GetLogger("wifi")
		ctx := options.CommandLineContext(log, options.Flags.CommandTimeout)
		defer options.Done(ctx)

		gw, err := options.GatewayClient(ctx, log)
		if err != nil {
			return err
		}
		st, err := options.OpenStore(log)
		if err != nil {
			return err
		}
		defer st.Close()

		sess := provision.NewSession(log, gw, st)
		defer sess.Close()
		sess.SetPolling(
			options.Viper.GetDuration("provision.interval"),
			options.Viper.GetDuration("provision.timeout"),
		)

		if _, err := sess.RefreshNetworks(ctx, false); err != nil {
			hlog.ErrorIfNotCanceled(log, err, "Network scan failed")
			return err
		}
		if sess.NoNetworksFound() {
			return errors.New("no networks found, move the display closer to the access point and retry")
		}

		if len(args) == 1 {
			sess.Select(args[0])
			// Selecting by hand bypasses the auto-prefill, so consult the
			// cache for this SSID too.
			if connectFlags.password == "" {
				if cached, ok, err := st.Lookup(ctx, args[0]); err == nil && ok {
					sess.SetPassword(cached)
				} else {
					sess.SetPassword("")
				}
			}
		}
		if connectFlags.password != "" {
			sess.SetPassword(connectFlags.password)
		}

		ssid, password := sess.Selected()
		if password == "" {
			password, err = promptLine(fmt.Sprintf("Password for %q: ", ssid))
			if err != nil {
				return err
			}
			sess.SetPassword(password)
		}

		// Nothing is sent to the device before the user confirms.
		if !connectFlags.yes {
			answer, err := promptLine(fmt.Sprintf("Send WiFi configuration for %q? [y/N] ", ssid))
			if err != nil {
				return err
			}
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes":
			default:
				fmt.Println("aborted")
				return nil
			}
		}

		if err := sess.Submit(ctx); err != nil {
			return err
		}

		fmt.Printf("connecting to %q ...\n", ssid)
		var status provision.Status
		select {
		case status = <-sess.Terminal():
		case <-ctx.Done():
			return ctx.Err()
		}

		switch status {
		case provision.StatusSuccess:
			fmt.Println("connected")
			return nil
		case provision.StatusPasswordError:
			return errors.New("the display rejected the password")
		case provision.StatusTimeout:
			return errors.New("the display did not connect in time")
		default:
			if msg := sess.Err(); msg != "" {
				return errors.New(msg)
			}
			return fmt.Errorf("connection ended in state %q", status)
		}
	},
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
