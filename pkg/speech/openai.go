package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	openaisdk "github.com/openai/openai-go"
)

// OpenAIConfig configures the fallback text-to-speech model.
type OpenAIConfig struct {
	Model string `split_words:"true" default:"tts-1"`
	Voice string `split_words:"true" default:"alloy"`
}

// OpenAI synthesizes speech through an OpenAI-compatible audio endpoint.
type OpenAI struct {
	client *openaisdk.Client
	model  string
	voice  string
}

func NewOpenAI(client *openaisdk.Client, cfg OpenAIConfig) (*OpenAI, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	return &OpenAI{
		client: client,
		model:  cfg.Model,
		voice:  cfg.Voice,
	}, nil
}

func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.Audio.Speech.New(ctx, openaisdk.AudioSpeechNewParams{
		Model:          openaisdk.SpeechModel(o.model),
		Input:          text,
		Voice:          openaisdk.AudioSpeechNewParamsVoice(o.voice),
		ResponseFormat: openaisdk.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai speech: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("openai speech: empty audio response")
	}
	return audio, nil
}
