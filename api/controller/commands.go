package controller

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-unifi-controller/observability"
)

// Command managers.
const (
	StationManager = "stamgr"
	DeviceManager  = "devmgr"

	// DefaultCommandPath is where Run sends commands.
	DefaultCommandPath = "api/cmd/" + StationManager

	// DefaultGuestMinutes is the guest authorization length used when
	// Authorize is given a non-positive duration.
	DefaultGuestMinutes = 800
)

// Command names understood by the managers.
const (
	CmdAuthorizeGuest   = "authorize-guest"
	CmdUnauthorizeGuest = "unauthorize-guest"
	CmdBlockStation     = "block-sta"
	CmdUnblockStation   = "unblock-sta"
	CmdKickStation      = "kick-sta"
	CmdRestart          = "restart"
)

// Run sends command to the station manager. payload is copied, never
// modified; the result is discarded.
func (c *Client) Run(ctx context.Context, command string, payload Payload) error {
	return c.RunManager(ctx, DefaultCommandPath, command, payload)
}

// RunManager sends command to the manager at mgrPath, e.g. "api/cmd/devmgr".
// An empty mgrPath means DefaultCommandPath.
func (c *Client) RunManager(ctx context.Context, mgrPath, command string, payload Payload) error {
	if command == "" {
		return invalidArgument("command is required")
	}
	if mgrPath == "" {
		mgrPath = DefaultCommandPath
	}

	return c.command(ctx, mgrPath, command, payload.with("cmd", command))
}

// macCommand sends command for one MAC to api/cmd/{mgr}.
func (c *Client) macCommand(ctx context.Context, mac, command, mgr string) error {
	return c.macExtCommand(ctx, mac, command, mgr, nil)
}

// macExtCommand is macCommand with extra payload fields.
func (c *Client) macExtCommand(ctx context.Context, mac, command, mgr string, payload Payload) error {
	if mac == "" {
		return invalidArgument("mac is required for %s", command)
	}
	if mgr == "" {
		mgr = StationManager
	}

	body := payload.with("mac", strings.ToLower(mac)).with("cmd", command)

	return c.command(ctx, "api/cmd/"+mgr, command, body)
}

func (c *Client) command(ctx context.Context, path, command string, body Payload) error {
	manager := path[strings.LastIndex(path, "/")+1:]
	fields := []observability.Field{
		{Key: "command", Value: command},
		{Key: "mgr", Value: manager},
	}
	if mac, ok := body["mac"]; ok {
		fields = append(fields, observability.Field{Key: "mac", Value: mac})
	}

	c.logger.Debug("sending command", fields...)

	if _, err := c.ReadJSON(ctx, path, body); err != nil {
		c.metrics.RecordCommand(manager, command, false)
		return errors.Wrapf(err, "command %s failed", command)
	}

	c.metrics.RecordCommand(manager, command, true)
	c.logger.Info("command completed", fields...)

	return nil
}

// GuestLimits are optional bandwidth and transfer limits for Authorize.
// Zero fields are left out.
type GuestLimits struct {
	// Up is the upload rate limit in kbps.
	Up int
	// Down is the download rate limit in kbps.
	Down int
	// Bytes is the transfer quota in MB.
	Bytes int
}

// Payload returns the limits as command fields.
func (l GuestLimits) Payload() Payload {
	payload := Payload{}
	if l.Up > 0 {
		payload["up"] = l.Up
	}
	if l.Down > 0 {
		payload["down"] = l.Down
	}
	if l.Bytes > 0 {
		payload["bytes"] = l.Bytes
	}
	return payload
}

// Authorize grants guest access to mac for minutes (non-positive means
// DefaultGuestMinutes). payload carries extra fields such as
// GuestLimits.Payload().
func (c *Client) Authorize(ctx context.Context, mac string, minutes int, payload Payload) error {
	if minutes <= 0 {
		minutes = DefaultGuestMinutes
	}

	return c.macExtCommand(ctx, mac, CmdAuthorizeGuest, StationManager, payload.with("minutes", minutes))
}

// Unauthorize revokes guest access for mac.
func (c *Client) Unauthorize(ctx context.Context, mac string) error {
	return c.macCommand(ctx, mac, CmdUnauthorizeGuest, StationManager)
}

// BlockClient blocks mac from the network.
func (c *Client) BlockClient(ctx context.Context, mac string) error {
	return c.macCommand(ctx, mac, CmdBlockStation, StationManager)
}

// UnblockClient lifts a block on mac.
func (c *Client) UnblockClient(ctx context.Context, mac string) error {
	return c.macCommand(ctx, mac, CmdUnblockStation, StationManager)
}

// DisconnectClient kicks mac, forcing it to reassociate.
// Kicking a client that is not connected still succeeds.
func (c *Client) DisconnectClient(ctx context.Context, mac string) error {
	return c.macCommand(ctx, mac, CmdKickStation, StationManager)
}

// RestartAP restarts the device with the given MAC.
func (c *Client) RestartAP(ctx context.Context, mac string) error {
	return c.macCommand(ctx, mac, CmdRestart, DeviceManager)
}

// RestartAPByName restarts every connected device named name and returns
// the MACs it restarted. It stops at the first failed restart.
func (c *Client) RestartAPByName(ctx context.Context, name string) ([]string, error) {
	if name == "" {
		return nil, invalidArgument("access point name is required")
	}

	aps, err := c.GetAPs(ctx)
	if err != nil {
		return nil, err
	}

	var restarted []string
	for _, ap := range aps {
		if ap.State() != DeviceStateConnected || ap.Name() != name {
			continue
		}

		if err := c.RestartAP(ctx, ap.MAC()); err != nil {
			return restarted, errors.Wrapf(err, "restart %s (%s)", name, ap.MAC())
		}

		restarted = append(restarted, ap.MAC())
	}

	return restarted, nil
}
