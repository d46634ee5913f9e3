package kiosk

import (
	"context"
	"errors"
	"time"

	"github.com/ecobin/ecobin/internal/log"
	"github.com/ecobin/ecobin/pkg/rewards"
	"github.com/ecobin/ecobin/pkg/scanner"
)

// settleDelay gives the bin time to settle between events.
const settleDelay = 500 * time.Millisecond

// Classifier guesses the material in a JPEG snapshot.
type Classifier func(jpeg []byte) (rewards.Material, bool)

// Kiosk couples a trigger, a camera, a classifier, and the reward API.
type Kiosk struct {
	trigger  Trigger
	camera   scanner.Source
	classify Classifier
	client   *RewardClient

	// Fallback is the material used when the classifier is unsure.
	// Empty means the event is skipped.
	Fallback rewards.Material
}

// New creates a kiosk. A nil classify uses the built-in heuristic.
func New(trigger Trigger, camera scanner.Source, classify Classifier, client *RewardClient) *Kiosk {
	if classify == nil {
		classify = Classify
	}
	return &Kiosk{
		trigger:  trigger,
		camera:   camera,
		classify: classify,
		client:   client,
	}
}

// Run processes trigger events until ctx is cancelled. Per-event errors
// are logged and the loop continues; only cancellation ends it.
func (k *Kiosk) Run(ctx context.Context) error {
	// Closing the trigger unblocks a pending Next on cancellation.
	go func() {
		<-ctx.Done()
		k.trigger.Close()
	}()

	for {
		if err := k.trigger.Next(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("trigger read failed", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		log.Info("bin sensor fired, capturing snapshot")
		k.handleEvent(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settleDelay):
		}
	}
}

func (k *Kiosk) handleEvent(ctx context.Context) {
	frame, err := k.snapshot()
	if err != nil {
		log.Warn("snapshot failed", "error", err)
		return
	}

	material, ok := k.classify(frame)
	if !ok {
		if k.Fallback == "" {
			log.Info("material not recognized, skipping event")
			return
		}
		material = k.Fallback
	}
	log.Info("material classified", "material", material)

	result, err := k.client.Mint(ctx, material)
	if err != nil {
		log.Warn("reward mint failed", "error", err)
		return
	}
	log.Info("reward minted",
		"material", result.Material,
		"points", result.Points,
		"qr_url", result.QRURL)
}

// snapshot opens the camera for a single frame, matching the original
// per-event capture behavior.
func (k *Kiosk) snapshot() ([]byte, error) {
	if err := k.camera.Open(); err != nil {
		return nil, err
	}
	defer k.camera.Close()

	frame, err := k.camera.Read()
	if err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, errors.New("empty frame")
	}
	return frame, nil
}
