package scanner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource scripts frames and records lifecycle calls.
type fakeSource struct {
	openErr  error
	closeErr error

	opens  atomic.Int32
	closes atomic.Int32
}

func (s *fakeSource) Open() error {
	s.opens.Add(1)
	return s.openErr
}

func (s *fakeSource) Read() ([]byte, error) {
	return []byte("frame"), nil
}

func (s *fakeSource) Close() error {
	s.closes.Add(1)
	return s.closeErr
}

// fakeDecoder returns scripted results in order, then empty forever.
type fakeDecoder struct {
	results []string
	calls   atomic.Int32
}

func (d *fakeDecoder) Decode(jpeg []byte) (string, error) {
	n := int(d.calls.Add(1)) - 1
	if n < len(d.results) {
		return d.results[n], nil
	}
	return "", nil
}

func (d *fakeDecoder) Close() error { return nil }

func factoryFor(d *fakeDecoder, constructed *atomic.Int32) DecoderFactory {
	return func(cfg Config) (Decoder, error) {
		if constructed != nil {
			constructed.Add(1)
		}
		return d, nil
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Framerate = 50 // keep test wall time short
	return cfg
}

func waitDone(t *testing.T, b *Binding) {
	t.Helper()
	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("binding did not finish in time")
	}
}

func TestBind_NoSource(t *testing.T) {
	var constructed atomic.Int32
	factory := factoryFor(&fakeDecoder{}, &constructed)

	b, ok := Bind(nil, factory, NewForm(TokenField), testConfig())
	if ok || b != nil {
		t.Fatal("expected no-op binding when source is absent")
	}
	if constructed.Load() != 0 {
		t.Error("decoder capability must not be touched when source is absent")
	}
}

func TestBind_NoCapability(t *testing.T) {
	src := &fakeSource{}

	b, ok := Bind(src, nil, NewForm(TokenField), testConfig())
	if ok || b != nil {
		t.Fatal("expected no-op binding when decoder capability is absent")
	}
	if src.opens.Load() != 0 {
		t.Error("source must not be opened when capability is absent")
	}
}

func TestBinding_TrimsDecodedText(t *testing.T) {
	src := &fakeSource{}
	dec := &fakeDecoder{results: []string{"", " ABC123 \n"}}
	form := NewForm(TokenField)

	b, ok := Bind(src, factoryFor(dec, nil), form, testConfig())
	if !ok {
		t.Fatal("Bind failed")
	}
	b.Start(context.Background())
	waitDone(t, b)

	field, _ := form.Field(TokenField)
	if got := field.Value(); got != "ABC123" {
		t.Errorf("field value = %q, want %q", got, "ABC123")
	}
	if b.State() != StateStopped {
		t.Errorf("state = %v, want StateStopped", b.State())
	}
}

func TestBinding_MissingTokenField(t *testing.T) {
	src := &fakeSource{}
	dec := &fakeDecoder{results: []string{"hello"}}
	form := NewForm("username") // no token field

	b, ok := Bind(src, factoryFor(dec, nil), form, testConfig())
	if !ok {
		t.Fatal("Bind failed")
	}
	b.Start(context.Background())
	waitDone(t, b)

	// Text is discarded but capture is still stopped.
	if src.closes.Load() != 1 {
		t.Errorf("close calls = %d, want 1", src.closes.Load())
	}
}

func TestBinding_StartFailure(t *testing.T) {
	src := &fakeSource{openErr: errors.New("permission denied")}
	dec := &fakeDecoder{}

	b, ok := Bind(src, factoryFor(dec, nil), NewForm(TokenField), testConfig())
	if !ok {
		t.Fatal("Bind failed")
	}
	b.Start(context.Background())
	waitDone(t, b)

	if b.State() != StateFailed {
		t.Errorf("state = %v, want StateFailed", b.State())
	}
	if src.closes.Load() != 0 {
		t.Error("stop must not be issued after a failed start")
	}
}

func TestBinding_StopFailureSwallowed(t *testing.T) {
	src := &fakeSource{closeErr: errors.New("device busy")}
	dec := &fakeDecoder{results: []string{"hello"}}
	form := NewForm(TokenField)

	b, ok := Bind(src, factoryFor(dec, nil), form, testConfig())
	if !ok {
		t.Fatal("Bind failed")
	}
	b.Start(context.Background())
	waitDone(t, b)

	// The field update survives a failed stop.
	field, _ := form.Field(TokenField)
	if got := field.Value(); got != "hello" {
		t.Errorf("field value = %q, want %q", got, "hello")
	}
	if b.State() != StateStopped {
		t.Errorf("state = %v, want StateStopped", b.State())
	}
}

func TestBinding_EndToEnd(t *testing.T) {
	src := &fakeSource{}
	dec := &fakeDecoder{results: []string{"", "", "hello", "later"}}
	form := NewForm(TokenField)
	var constructed atomic.Int32

	b, ok := Bind(src, factoryFor(dec, &constructed), form, testConfig())
	if !ok {
		t.Fatal("Bind failed")
	}
	b.Start(context.Background())
	waitDone(t, b)

	field, _ := form.Field(TokenField)
	if got := field.Value(); got != "hello" {
		t.Errorf("field value = %q, want %q", got, "hello")
	}
	if constructed.Load() != 1 {
		t.Errorf("decoder constructed %d times, want 1", constructed.Load())
	}
	if src.closes.Load() != 1 {
		t.Errorf("stop requested %d times, want exactly 1", src.closes.Load())
	}
	// The decode after "hello" never reaches the field.
	if field.Value() == "later" {
		t.Error("decode after the accepted one must be ignored")
	}
}

func TestBinding_CancelStopsCapture(t *testing.T) {
	src := &fakeSource{}
	dec := &fakeDecoder{} // never decodes

	b, ok := Bind(src, factoryFor(dec, nil), NewForm(TokenField), testConfig())
	if !ok {
		t.Fatal("Bind failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)

	time.Sleep(100 * time.Millisecond)
	cancel()
	waitDone(t, b)

	if b.State() != StateStopped {
		t.Errorf("state = %v, want StateStopped after cancel", b.State())
	}
	if src.closes.Load() != 1 {
		t.Errorf("close calls = %d, want 1", src.closes.Load())
	}
}
