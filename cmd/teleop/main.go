package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-pepper/internal/config"
	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/dispatch"
	"github.com/teslashibe/go-pepper/pkg/teleop"
	"github.com/teslashibe/go-pepper/pkg/transport"
)

func main() {
	gatewayURL := flag.String("gateway", config.GatewayURL("ws://localhost:5000/ws/teleop"), "Gateway websocket URL")
	tickHz := flag.Int("hz", config.TickHz(), "Control loop rate")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	fmt.Println("Pepper teleop pilot")
	fmt.Printf("   Gateway: %s\n", *gatewayURL)
	fmt.Printf("   Tick:    %d Hz\n", *tickHz)
	fmt.Println("   Poses:   newline-delimited JSON frames on stdin")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	source := newStdinSource(os.Stdin)
	go source.run(ctx)

	client := transport.NewClient(*gatewayURL)
	go client.Run(ctx)

	queue := dispatch.NewQueue(client)
	pilot := teleop.NewPilot(source, queue, client.Events(), teleop.Options{TickHz: *tickHz})
	pilot.Run(ctx)

	// Best-effort halt before the link goes away.
	pilot.EmergencyStop()
	client.Close()
}
