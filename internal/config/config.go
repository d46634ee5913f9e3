// Package config provides environment configuration helpers for ecobin commands.
package config

import (
	"os"
	"strconv"
)

// Defaults shared by the binaries.
const (
	DefaultListenAddr  = ":5000"
	DefaultAPIToken    = "changeme"
	DefaultBaudRate    = 9600
	DefaultTriggerLine = "1"
)

// Env returns the value of key, or fallback if unset or empty.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt returns the integer value of key, or fallback if unset or invalid.
func EnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// ListenAddr returns the server listen address from PORT or ECOBIN_ADDR.
func ListenAddr() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return Env("ECOBIN_ADDR", DefaultListenAddr)
}

// DatabaseURL returns the Postgres DSN. Empty means in-memory storage.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// APIToken returns the shared key for the reward-minting API.
func APIToken() string {
	return Env("ECOBIN_API_TOKEN", DefaultAPIToken)
}

// APIURL returns the reward API endpoint used by the kiosk.
func APIURL() string {
	return Env("ECOBIN_API_URL", "http://localhost:5000/api/reward")
}

// ServerURL returns the base URL of the ecobin server.
func ServerURL() string {
	return Env("ECOBIN_SERVER_URL", "http://localhost:5000")
}

// SerialPort returns the kiosk trigger serial port.
func SerialPort() string {
	return Env("ECOBIN_SERIAL_PORT", "/dev/ttyACM0")
}

// BaudRate returns the kiosk serial baud rate.
func BaudRate() int {
	return EnvInt("ECOBIN_BAUDRATE", DefaultBaudRate)
}

// TriggerLine returns the serial line value that fires a capture.
func TriggerLine() string {
	return Env("ECOBIN_TRIGGER", DefaultTriggerLine)
}

// CameraIndex returns the webcam device index.
func CameraIndex() int {
	return EnvInt("ECOBIN_CAMERA", 0)
}

// QRDir returns the directory for cached reward QR images.
func QRDir() string {
	return Env("ECOBIN_QR_DIR", "static/qr")
}

// AdminUsername returns the seed admin username.
func AdminUsername() string {
	return Env("ADMIN_USERNAME", "admin")
}

// AdminEmail returns the seed admin email.
func AdminEmail() string {
	return Env("ADMIN_EMAIL", "admin@example.com")
}

// AdminPassword returns the seed admin password.
func AdminPassword() string {
	return Env("ADMIN_PASSWORD", "admin123")
}
