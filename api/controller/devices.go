package controller

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Read endpoints, relative to the base URL.
const (
	PathDevices  = "api/stat/device"
	PathClients  = "api/stat/sta"
	PathWLANConf = "api/list/wlanconf"
)

// GetAPs returns every device known to the controller.
func (c *Client) GetAPs(ctx context.Context) ([]Record, error) {
	data, err := c.ReadJSON(ctx, PathDevices, Payload{"_depth": 2, "test": nil})
	if err != nil {
		return nil, err
	}

	return c.records("get_aps", data)
}

// GetClients returns every connected client (station).
func (c *Client) GetClients(ctx context.Context) ([]Record, error) {
	data, err := c.Read(ctx, PathClients, nil)
	if err != nil {
		return nil, err
	}

	return c.records("get_clients", data)
}

// GetQuota returns the larger of the receive and transmit byte counters of
// the first client whose MAC matches mac, ignoring case. It returns 0 when
// no client matches; a missing counter counts as 0.
func (c *Client) GetQuota(ctx context.Context, mac string) (int64, error) {
	if mac == "" {
		return 0, invalidArgument("mac is required")
	}

	clients, err := c.GetClients(ctx)
	if err != nil {
		return 0, err
	}

	for _, client := range clients {
		if !strings.EqualFold(client.MAC(), mac) {
			continue
		}

		rx, err := byteCounter(client, "rx_bytes")
		if err != nil {
			return 0, err
		}

		tx, err := byteCounter(client, "tx_bytes")
		if err != nil {
			return 0, err
		}

		return max(rx, tx), nil
	}

	return 0, nil
}

// GetWLANConf returns the configured wireless networks.
func (c *Client) GetWLANConf(ctx context.Context) ([]Record, error) {
	data, err := c.Read(ctx, PathWLANConf, nil)
	if err != nil {
		return nil, err
	}

	return c.records("get_wlan_conf", data)
}

// byteCounter reads a traffic counter. A counter that is present but not an
// int64 is malformed.
func byteCounter(record Record, key string) (int64, error) {
	if record[key] == nil {
		return 0, nil
	}

	n, ok := record.Int(key)
	if !ok {
		return 0, errors.Wrapf(ErrMalformedResponse, "%s of %s is %v", key, record.MAC(), record[key])
	}

	return n, nil
}

func (c *Client) records(operation string, data any) ([]Record, error) {
	records, err := toRecords(data)
	if err != nil {
		c.metrics.RecordError(operation, "MalformedResponseError")
		return nil, err
	}

	return records, nil
}
