package speech

import (
	"context"
	"errors"
	"testing"
)

type stubSynth struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func TestFallbackUsesFirstSuccess(t *testing.T) {
	t.Parallel()

	primary := &stubSynth{audio: []byte("mp3")}
	secondary := &stubSynth{audio: []byte("other")}
	f := NewFallback(primary, secondary)

	got, err := f.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "mp3" {
		t.Fatalf("got %q", got)
	}
	if secondary.calls != 0 {
		t.Fatal("secondary must not be called when the primary succeeds")
	}
}

func TestFallbackSkipsFailures(t *testing.T) {
	t.Parallel()

	primary := &stubSynth{err: errors.New("down")}
	secondary := &stubSynth{audio: []byte("mp3")}
	f := NewFallback(primary, nil, secondary)

	got, err := f.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "mp3" || primary.calls != 1 {
		t.Fatalf("got %q, primary calls %d", got, primary.calls)
	}
}

func TestFallbackAllFail(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("down")
	f := NewFallback(&stubSynth{err: errors.New("first")}, &stubSynth{err: wantErr})

	if _, err := f.Synthesize(context.Background(), "hello"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want last failure", err)
	}
}

func TestFallbackEmptyChain(t *testing.T) {
	t.Parallel()

	if _, err := NewFallback().Synthesize(context.Background(), "hello"); !errors.Is(err, ErrNoSynthesizer) {
		t.Fatalf("err = %v", err)
	}
}
