// Package speech turns agent utterances into playable audio. Deepgram is the
// primary synthesizer; an OpenAI-compatible endpoint can serve as a fallback
// when Deepgram is unavailable.
package speech

import "context"

// Synthesizer renders spoken text to MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Fallback tries each synthesizer in order and returns the first success.
type Fallback struct {
	chain []Synthesizer
}

func NewFallback(chain ...Synthesizer) *Fallback {
	out := make([]Synthesizer, 0, len(chain))
	for _, s := range chain {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Fallback{chain: out}
}

func (f *Fallback) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var lastErr error
	for _, s := range f.chain {
		audio, err := s.Synthesize(ctx, text)
		if err == nil {
			return audio, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = ErrNoSynthesizer
	}
	return nil, lastErr
}
