package controller_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lexfrei/go-unifi-controller/api/controller"
)

func ExampleNew() {
	ctx := context.Background()

	client, err := controller.New(ctx, "192.168.1.99", "admin", "p4ssw0rd")
	if err != nil {
		log.Fatal(err)
	}

	aps, err := client.GetAPs(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for _, ap := range aps {
		fmt.Println(ap.Name(), ap.MAC())
	}
}

func ExampleNewWithConfig() {
	ctx := context.Background()

	client, err := controller.NewWithConfig(ctx, &controller.ClientConfig{
		Host:               "unifi.local",
		Port:               8443,
		Username:           "admin",
		Password:           "p4ssw0rd",
		InsecureSkipVerify: true,
		Timeout:            10 * time.Second,
		RateLimitPerMinute: 120,
	})
	if err != nil {
		log.Fatal(err)
	}

	_ = client
}

func ExampleClient_Authorize() {
	ctx := context.Background()

	client, err := controller.New(ctx, "192.168.1.99", "admin", "p4ssw0rd")
	if err != nil {
		log.Fatal(err)
	}

	limits := controller.GuestLimits{Up: 512, Down: 2048, Bytes: 1024}

	err = client.Authorize(ctx, "aa:bb:cc:dd:ee:ff", 60, limits.Payload())
	if err != nil {
		log.Fatal(err)
	}
}

func ExampleClient_RestartAPByName() {
	ctx := context.Background()

	client, err := controller.New(ctx, "192.168.1.99", "admin", "p4ssw0rd")
	if err != nil {
		log.Fatal(err)
	}

	restarted, err := client.RestartAPByName(ctx, "Garage")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("restarted:", restarted)
}
