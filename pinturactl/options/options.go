package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/austinelec/pintura-link/internal/global"
	"github.com/austinelec/pintura-link/internal/store"
	"github.com/austinelec/pintura-link/pkg/pintura"
	"github.com/go-logr/logr"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var Flags struct {
	Verbose        bool
	Debug          bool
	Json           bool
	Config         string
	Gateway        string
	CommandTimeout time.Duration
	MdnsTimeout    time.Duration
}

// Viper carries file/env configuration: gateway.host, gateway.timeout,
// provision.interval, provision.timeout, cloud.region, store.path.
var Viper = viper.New()

func LoadConfig(log logr.Logger) {
	if Flags.Config != "" {
		Viper.SetConfigFile(Flags.Config)
	} else {
		Viper.SetConfigName("config")
		Viper.SetConfigType("yaml")
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			Viper.AddConfigPath(filepath.Join(dir, "pintura-link"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			Viper.AddConfigPath(filepath.Join(home, ".config", "pintura-link"))
		}
		Viper.AddConfigPath(".")
	}
	Viper.SetEnvPrefix("PINTURA")
	Viper.AutomaticEnv()

	Viper.SetDefault("gateway.timeout", pintura.DefaultTimeout)
	Viper.SetDefault("provision.interval", time.Second)
	Viper.SetDefault("provision.timeout", time.Minute)
	Viper.SetDefault("cloud.region", "CN")

	if err := Viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Error(err, "Failed to read config file")
		}
	} else {
		log.V(1).Info("Loaded config", "file", Viper.ConfigFileUsed())
	}
}

// CommandLineContext returns a context carrying the logger, cancelled by
// SIGINT/SIGTERM and optionally by a timeout.
func CommandLineContext(log logr.Logger, timeout time.Duration) context.Context {
	ctx := context.Background()
	ctx = logr.NewContext(ctx, log)
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	ctx = context.WithValue(ctx, global.CancelKey, cancel)
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		signal.Notify(signals, syscall.SIGTERM)
		<-signals
		log.Info("Received signal")
		cancel()
	}()
	return ctx
}

// Done tears a command context down: cancels it and waits for it to drain,
// so nothing scheduled on it can fire after the command returns.
func Done(ctx context.Context) {
	cancel := ctx.Value(global.CancelKey).(context.CancelFunc)
	cancel()
	<-ctx.Done()
}

// GatewayClient connects to the device named by --gateway or gateway.host,
// falling back to mDNS discovery of the setup access point.
func GatewayClient(ctx context.Context, log logr.Logger) (*pintura.Client, error) {
	host := Flags.Gateway
	if host == "" {
		host = Viper.GetString("gateway.host")
	}
	if host == "" {
		timeout := Flags.MdnsTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		discovered, err := pintura.Discover(ctx, log, timeout)
		if err != nil {
			return nil, fmt.Errorf("no gateway configured and discovery failed: %w", err)
		}
		host = discovered
	}
	return pintura.NewClient(log, host, Viper.GetDuration("gateway.timeout")), nil
}

// OpenStore opens the persisted credential/session store.
func OpenStore(log logr.Logger) (*store.Store, error) {
	path := Viper.GetString("store.path")
	if path == "" {
		dir := os.Getenv("XDG_DATA_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			dir = filepath.Join(home, ".local", "share")
		}
		dir = filepath.Join(dir, "pintura-link")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "pintura.db")
	}
	return store.NewStore(log, path)
}

func PrintResult(out any) error {
	if Flags.Json {
		s, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Println(string(s))
	} else {
		s, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Println(string(s))
	}
	return nil
}
