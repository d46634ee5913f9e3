// EcoBin kiosk - waits for the bin sensor, captures a snapshot, guesses
// the material, and mints a reward QR through the server API.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecobin/ecobin/internal/config"
	"github.com/ecobin/ecobin/internal/log"
	"github.com/ecobin/ecobin/pkg/kiosk"
	"github.com/ecobin/ecobin/pkg/rewards"
	"github.com/ecobin/ecobin/pkg/scanner"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	fallback := flag.String("fallback", "", "Material when unsure (bottle, paper, or empty to skip)")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	trigger, err := kiosk.OpenSerialTrigger(config.SerialPort(), config.BaudRate(), config.TriggerLine())
	if err != nil {
		log.Error("failed to open serial port", "error", err)
		os.Exit(1)
	}

	camera := scanner.NewWebcam(config.CameraIndex())
	client := kiosk.NewRewardClient(config.APIURL(), config.APIToken())

	k := kiosk.New(trigger, camera, nil, client)
	k.Fallback = rewards.Material(*fallback)

	log.Info("kiosk listening",
		"port", config.SerialPort(),
		"baud", config.BaudRate(),
		"camera", config.CameraIndex())

	if err := k.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("kiosk stopped", "error", err)
		os.Exit(1)
	}
}
