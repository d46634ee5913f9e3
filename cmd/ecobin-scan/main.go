// EcoBin scan - points the camera at a reward QR code, fills the scan
// form's token field with the first decode, and submits the redemption.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecobin/ecobin/internal/config"
	"github.com/ecobin/ecobin/internal/httpc"
	"github.com/ecobin/ecobin/internal/log"
	"github.com/ecobin/ecobin/pkg/scanner"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	submit := flag.Bool("submit", true, "Submit the scanned token to the server")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg := scanner.DefaultConfig()
	form := scanner.NewForm(scanner.TokenField)

	// Missing camera or decoder means the feature is simply not present.
	binding, ok := scanner.Bind(scanner.NewWebcamForFacing(cfg.Facing), scanner.NewQRDecoder, form, cfg)
	if !ok {
		log.Debug("qr scanning not available")
		return
	}

	log.Info("point the camera at a reward QR code")
	binding.Start(ctx)
	<-binding.Done()

	if binding.State() != scanner.StateStopped {
		return
	}

	field, _ := form.Field(scanner.TokenField)
	token := field.Value()
	if token == "" {
		return
	}
	log.Info("scanned token", "token", token)

	if !*submit {
		fmt.Println(token)
		return
	}

	if err := redeem(ctx, token); err != nil {
		log.Error("redeem failed", "error", err)
		os.Exit(1)
	}
}

// redeem logs in with ECOBIN_USERNAME/ECOBIN_PASSWORD and posts the token
// to the scan endpoint.
func redeem(ctx context.Context, token string) error {
	base := config.ServerURL()
	username := os.Getenv("ECOBIN_USERNAME")
	password := os.Getenv("ECOBIN_PASSWORD")
	if username == "" || password == "" {
		return fmt.Errorf("ECOBIN_USERNAME and ECOBIN_PASSWORD are required to submit")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	client := httpc.NewClient(httpc.DefaultTimeout)
	client.Jar = jar

	if err := postJSON(ctx, client, base+"/login", map[string]string{
		"username": username,
		"password": password,
	}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := postJSON(ctx, client, base+"/scan", map[string]string{
		"token": token,
	}); err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	log.Info("reward redeemed", "token", token)
	return nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("%s", e.Error)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
