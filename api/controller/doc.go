// Package controller provides a Go client for the UniFi controller's
// legacy management API.
//
// The API is served by the controller itself (classic software controller
// or Cloud Key) on port 8443:
//
//	https://<controller>:8443/
//
// # Authentication
//
// The client logs in with a form POST to /login when it is created and
// keeps the session cookie in a jar private to the client. There is no
// automatic re-login; call Login to start a new session after the
// controller restarts.
//
// # Responses
//
// Every response is wrapped in an envelope:
//
//	{"meta": {"rc": "ok"}, "data": [ ... ]}
//
// A meta.rc other than "ok" is returned as *APIError carrying meta.msg.
// Records are returned untyped as Record values; numbers are json.Number
// so byte counters keep full precision.
//
// # Basic Usage
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/lexfrei/go-unifi-controller/api/controller"
//	)
//
//	func main() {
//	    ctx := context.Background()
//
//	    client, err := controller.New(ctx, "192.168.1.99", "admin", "p4ssw0rd")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    aps, err := client.GetAPs(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    for _, ap := range aps {
//	        fmt.Printf("%s %s state=%d\n", ap.Name(), ap.MAC(), ap.State())
//	    }
//
//	    // Give a guest two hours with a 2 Mbps download cap
//	    limits := controller.GuestLimits{Down: 2048}
//	    if err := client.Authorize(ctx, "aa:bb:cc:dd:ee:ff", 120, limits.Payload()); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Errors
//
// Errors are built with github.com/cockroachdb/errors and classified by
// ErrTransport, ErrMalformedResponse, ErrInvalidArgument and
// ErrAuthentication:
//
//	if errors.Is(err, controller.ErrAuthentication) { ... }
//	if apiErr, ok := controller.AsAPIError(err); ok { fmt.Println(apiErr.Message) }
//
// Commands that the controller silently ignores, such as kicking a client
// that is not connected, succeed.
package controller
