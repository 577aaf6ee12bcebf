package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-pepper/internal/config"
	"github.com/teslashibe/go-pepper/internal/log"
	"github.com/teslashibe/go-pepper/pkg/gateway"
	"github.com/teslashibe/go-pepper/pkg/premotion"
	"github.com/teslashibe/go-pepper/pkg/robot"
)

func main() {
	robotIP := flag.String("robot", config.RobotIP(""), "Robot IP address (or set ROBOT_IP)")
	port := flag.String("port", config.DefaultCommandPort, "Command server port")
	limitsPath := flag.String("limits", "", "Joint limits JSON (default: embedded Pepper table)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// A gateway pointed at the wrong robot moves the wrong robot;
	// there is no sensible default address.
	if *robotIP == "" {
		*robotIP = config.RobotIPRequired()
	}

	level := config.LogLevel()
	if *debug {
		level = "debug"
	}
	log.Init(level)

	limits := robot.DefaultLimits()
	if *limitsPath != "" {
		var err error
		limits, err = robot.LoadLimits(*limitsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot load joint limits: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Pepper teleop gateway")
	fmt.Printf("   Robot:  %s\n", config.MotorAddr(*robotIP))
	fmt.Printf("   Listen: :%s\n", *port)
	fmt.Println()

	proxy := robot.NewHTTPController(config.MotorAddr(*robotIP))
	pepper := robot.NewPepper(proxy, limits)
	player := premotion.NewPlayer(proxy, limits)
	srv := gateway.NewServer(gateway.NewRouter(pepper, player))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		pepper.EmergencyStop()
		if err := srv.Shutdown(); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}()

	if err := srv.Listen(":" + *port); err != nil {
		log.Error("server ended", "error", err)
		os.Exit(1)
	}
	fmt.Println("Goodbye!")
}
