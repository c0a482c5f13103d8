// Command unifictl runs controller operations from the shell and prints
// the results as JSON.
//
// Usage:
//
//	unifictl [-config file] <command> [flags] [args]
//
// Connection settings come from the YAML config file and UNIFI_*
// environment variables (see internal/config).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-unifi-controller/api/controller"
	"github.com/lexfrei/go-unifi-controller/internal/config"
	"github.com/lexfrei/go-unifi-controller/observability"
)

var errUsage = errors.New("usage error")

type command struct {
	usage string
	args  int
	run   func(ctx context.Context, client controller.ControllerAPIClient, fs *flag.FlagSet) (any, error)
}

type status struct {
	Status string `json:"status"`
}

var okResult = status{Status: "ok"}

var commands = map[string]command{
	"aps": {
		usage: "aps",
		run: func(ctx context.Context, client controller.ControllerAPIClient, _ *flag.FlagSet) (any, error) {
			return client.GetAPs(ctx)
		},
	},
	"clients": {
		usage: "clients",
		run: func(ctx context.Context, client controller.ControllerAPIClient, _ *flag.FlagSet) (any, error) {
			return client.GetClients(ctx)
		},
	},
	"wlans": {
		usage: "wlans",
		run: func(ctx context.Context, client controller.ControllerAPIClient, _ *flag.FlagSet) (any, error) {
			return client.GetWLANConf(ctx)
		},
	},
	"quota": {
		usage: "quota MAC",
		args:  1,
		run: func(ctx context.Context, client controller.ControllerAPIClient, fs *flag.FlagSet) (any, error) {
			bytes, err := client.GetQuota(ctx, fs.Arg(0))
			if err != nil {
				return nil, err
			}
			return map[string]any{"mac": fs.Arg(0), "bytes": bytes}, nil
		},
	},
	"authorize": {
		usage: "authorize [-minutes N] [-up kbps] [-down kbps] [-bytes MB] MAC",
		args:  1,
		run: func(ctx context.Context, client controller.ControllerAPIClient, fs *flag.FlagSet) (any, error) {
			minutes := lookupInt(fs, "minutes")
			limits := controller.GuestLimits{
				Up:    lookupInt(fs, "up"),
				Down:  lookupInt(fs, "down"),
				Bytes: lookupInt(fs, "bytes"),
			}
			return okResult, client.Authorize(ctx, fs.Arg(0), minutes, limits.Payload())
		},
	},
	"unauthorize": macCommand("unauthorize", controller.ControllerAPIClient.Unauthorize),
	"block":       macCommand("block", controller.ControllerAPIClient.BlockClient),
	"unblock":     macCommand("unblock", controller.ControllerAPIClient.UnblockClient),
	"kick":        macCommand("kick", controller.ControllerAPIClient.DisconnectClient),
	"restart-ap":  macCommand("restart-ap", controller.ControllerAPIClient.RestartAP),
	"restart-ap-name": {
		usage: "restart-ap-name NAME",
		args:  1,
		run: func(ctx context.Context, client controller.ControllerAPIClient, fs *flag.FlagSet) (any, error) {
			restarted, err := client.RestartAPByName(ctx, fs.Arg(0))
			if err != nil {
				return nil, err
			}
			if restarted == nil {
				restarted = []string{}
			}
			return map[string]any{"restarted": restarted}, nil
		},
	},
	"run": {
		usage: "run [-mgr api/cmd/devmgr] [-json '{...}'] CMD",
		args:  1,
		run: func(ctx context.Context, client controller.ControllerAPIClient, fs *flag.FlagSet) (any, error) {
			var payload controller.Payload
			if raw := lookupString(fs, "json"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &payload); err != nil {
					return nil, errors.Mark(errors.Wrap(err, "invalid -json payload"), errUsage)
				}
			}
			return okResult, client.RunManager(ctx, lookupString(fs, "mgr"), fs.Arg(0), payload)
		},
	},
}

func macCommand(name string, call func(controller.ControllerAPIClient, context.Context, string) error) command {
	return command{
		usage: name + " MAC",
		args:  1,
		run: func(ctx context.Context, client controller.ControllerAPIClient, fs *flag.FlagSet) (any, error) {
			return okResult, call(client, ctx, fs.Arg(0))
		},
	}
}

// commandFlags declares the flags of name on fs.
func commandFlags(name string, fs *flag.FlagSet) {
	switch name {
	case "authorize":
		fs.Int("minutes", controller.DefaultGuestMinutes, "authorization length in minutes")
		fs.Int("up", 0, "upload limit in kbps")
		fs.Int("down", 0, "download limit in kbps")
		fs.Int("bytes", 0, "transfer quota in MB")
	case "run":
		fs.String("mgr", controller.DefaultCommandPath, "manager path")
		fs.String("json", "", "extra payload fields as a JSON object")
	}
}

func lookupInt(fs *flag.FlagSet, name string) int {
	getter, _ := fs.Lookup(name).Value.(flag.Getter)
	n, _ := getter.Get().(int)
	return n
}

func lookupString(fs *flag.FlagSet, name string) string {
	return fs.Lookup(name).Value.String()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "unifictl: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, lookup config.LookupFunc) error {
	global := flag.NewFlagSet("unifictl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to YAML config (or use UNIFI_CONFIG env)")
	global.Usage = func() { printUsage(stderr) }

	if err := global.Parse(args); err != nil {
		return errors.Mark(err, errUsage)
	}

	if global.NArg() == 0 {
		printUsage(stderr)
		return errors.Wrap(errUsage, "missing command")
	}

	name := global.Arg(0)
	cmd, found := commands[name]
	if !found {
		printUsage(stderr)
		return errors.Wrapf(errUsage, "unknown command %q", name)
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	commandFlags(name, fs)

	if err := fs.Parse(global.Args()[1:]); err != nil {
		return errors.Mark(err, errUsage)
	}
	if fs.NArg() != cmd.args {
		return errors.Wrapf(errUsage, "usage: unifictl %s", cmd.usage)
	}

	path := *configPath
	if path == "" {
		path, _ = lookup(config.EnvConfig)
	}

	cfg, err := config.LoadWithEnv(path, lookup)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger := observability.NewSlogLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	client, err := controller.NewWithConfig(ctx, cfg.ClientConfig(logger, nil))
	if err != nil {
		return err
	}

	result, err := cmd.run(ctx, client, fs)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(result), "failed to write result")
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Usage: unifictl [-config file] <command> [flags] [args]\n\nCommands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	b.WriteString("\nSettings are read from the config file and UNIFI_HOST, UNIFI_PORT,\n")
	b.WriteString("UNIFI_USERNAME, UNIFI_PASSWORD, UNIFI_INSECURE, UNIFI_TIMEOUT.\n")

	_, _ = io.WriteString(w, b.String())
}
