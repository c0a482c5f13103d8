package controller

import (
	"context"
	"net/url"
)

// ControllerAPIClient defines the interface for controller operations.
// This interface enables consumers to create mock implementations for testing.
//
// Example usage with testify/mock:
//
//	type MockClient struct {
//	    mock.Mock
//	}
//
//	func (m *MockClient) GetQuota(ctx context.Context, mac string) (int64, error) {
//	    args := m.Called(ctx, mac)
//	    return args.Get(0).(int64), args.Error(1)
//	}
//
//nolint:revive // ControllerAPIClient is intentionally explicit to avoid confusion with Client struct
type ControllerAPIClient interface { //nolint:interfacebloat // Mirrors the full client
	// Login starts a new session.
	Login(ctx context.Context) error

	// Read sends a raw request and returns the unwrapped envelope.
	Read(ctx context.Context, path string, form url.Values) (any, error)
	// ReadJSON sends payload in the "json" form field.
	ReadJSON(ctx context.Context, path string, payload any) (any, error)

	// Devices and clients
	GetAPs(ctx context.Context) ([]Record, error)
	GetClients(ctx context.Context) ([]Record, error)
	GetQuota(ctx context.Context, mac string) (int64, error)
	GetWLANConf(ctx context.Context) ([]Record, error)

	// Commands
	Run(ctx context.Context, command string, payload Payload) error
	RunManager(ctx context.Context, mgrPath, command string, payload Payload) error
	Authorize(ctx context.Context, mac string, minutes int, payload Payload) error
	Unauthorize(ctx context.Context, mac string) error
	BlockClient(ctx context.Context, mac string) error
	UnblockClient(ctx context.Context, mac string) error
	DisconnectClient(ctx context.Context, mac string) error
	RestartAP(ctx context.Context, mac string) error
	RestartAPByName(ctx context.Context, name string) ([]string, error)
}
