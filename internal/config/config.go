// Package config provides configuration helpers for go-pepper commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for the teleop stack.
const (
	DefaultCommandPort = "5000" // gateway websocket port
	DefaultNAOqiPort   = "9559" // Pepper motor daemon
	DefaultTickHz      = 30
)

// GatewayURL returns the gateway websocket URL from GATEWAY_URL.
// Falls back to the provided default if not set.
func GatewayURL(defaultURL string) string {
	if url := os.Getenv("GATEWAY_URL"); url != "" {
		return url
	}
	return defaultURL
}

// RobotIP returns the robot IP from ROBOT_IP env var.
// Falls back to the provided default if not set.
func RobotIP(defaultIP string) string {
	if ip := os.Getenv("ROBOT_IP"); ip != "" {
		return ip
	}
	return defaultIP
}

// RobotIPRequired returns the robot IP from ROBOT_IP env var.
// Exits with usage help if not set.
func RobotIPRequired() string {
	ip := os.Getenv("ROBOT_IP")
	if ip == "" {
		fmt.Fprintln(os.Stderr, "Error: ROBOT_IP environment variable is required")
		fmt.Fprintln(os.Stderr, "Usage: ROBOT_IP=192.168.1.100 go run ./cmd/...")
		os.Exit(1)
	}
	return ip
}

// MotorAddr returns the robot motor daemon host:port.
func MotorAddr(robotIP string) string {
	return fmt.Sprintf("%s:%s", robotIP, DefaultNAOqiPort)
}

// TickHz returns the control loop rate from TICK_HZ or the default.
func TickHz() int {
	if v := os.Getenv("TICK_HZ"); v != "" {
		if hz, err := strconv.Atoi(v); err == nil && hz > 0 {
			return hz
		}
	}
	return DefaultTickHz
}

// LogLevel returns the log level from LOG_LEVEL or "info".
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}
