package scanner

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ecobin/ecobin/internal/log"
)

// Source provides JPEG frames for decode attempts.
// Open is called once when capture starts; Close stops capture.
type Source interface {
	Open() error
	Read() ([]byte, error)
	Close() error
}

// Decoder extracts QR payload text from a JPEG frame.
// It returns an empty string when no symbol is recognized.
type Decoder interface {
	Decode(jpeg []byte) (string, error)
	Close() error
}

// DecoderFactory constructs a decoder for the given scan configuration.
type DecoderFactory func(cfg Config) (Decoder, error)

// State describes the binding lifecycle.
type State int32

// Binding states. There is no transition back to StateCapturing.
const (
	StateIdle State = iota
	StateCapturing
	StateStopped
	StateFailed
)

// Binding routes the first successful QR decode from a frame source into
// a form's token field, then stops capture.
type Binding struct {
	src        Source
	newDecoder DecoderFactory
	form       *Form
	cfg        Config

	state    atomic.Int32
	accepted atomic.Bool
	done     chan struct{}
}

// Bind probes the integration points and constructs a binding.
// It returns false, and touches nothing, when the frame source or the
// decoding capability is unavailable. That is the "feature not present"
// case, not an error.
func Bind(src Source, newDecoder DecoderFactory, form *Form, cfg Config) (*Binding, bool) {
	if src == nil || newDecoder == nil {
		return nil, false
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		cfg = DefaultConfig()
	}
	return &Binding{
		src:        src,
		newDecoder: newDecoder,
		form:       form,
		cfg:        cfg,
		done:       make(chan struct{}),
	}, true
}

// Start begins capture asynchronously. Start failures are logged as a
// warning and never propagate; the binding ends in StateFailed with no
// retry. Cancelling ctx before a decode stops capture.
func (b *Binding) Start(ctx context.Context) {
	go b.run(ctx)
}

// Done is closed once the binding has finished, whether by decode,
// cancellation, or start failure.
func (b *Binding) Done() <-chan struct{} {
	return b.done
}

// State returns the current lifecycle state.
func (b *Binding) State() State {
	return State(b.state.Load())
}

func (b *Binding) run(ctx context.Context) {
	defer close(b.done)

	dec, err := b.newDecoder(b.cfg)
	if err != nil {
		log.Warn("qr scanner failed to start", "error", err)
		b.state.Store(int32(StateFailed))
		return
	}
	defer dec.Close()

	if err := b.src.Open(); err != nil {
		log.Warn("qr scanner failed to start", "error", err)
		b.state.Store(int32(StateFailed))
		return
	}
	b.state.Store(int32(StateCapturing))

	interval := time.Second / time.Duration(b.cfg.Framerate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.stop()
			return
		case <-ticker.C:
			frame, err := b.src.Read()
			if err != nil {
				continue
			}
			text, err := dec.Decode(frame)
			if err != nil || text == "" {
				continue
			}
			// First accepted decode wins; anything later is ignored.
			if !b.accepted.CompareAndSwap(false, true) {
				continue
			}
			b.deliver(text)
			b.stop()
			return
		}
	}
}

// deliver writes the trimmed text into the token field. A form without a
// token field discards the text silently.
func (b *Binding) deliver(raw string) {
	if b.form == nil {
		return
	}
	field, ok := b.form.Field(TokenField)
	if !ok {
		return
	}
	field.SetValue(strings.TrimSpace(raw))
}

// stop releases capture. Stop failures are swallowed entirely: the field
// is already updated, so there is nothing actionable to report.
func (b *Binding) stop() {
	_ = b.src.Close()
	b.state.Store(int32(StateStopped))
}
