package extension

import (
	"context"
	"fmt"

	"github.com/MrWong99/ohbot/internal/observe"
)

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// SpeakNoWait starts speaking words with target's voice. The returned
// channel is already closed; speech continues in the background.
func (e *Extension) SpeakNoWait(ctx context.Context, targetID, words string) (<-chan struct{}, error) {
	if _, err := e.speak(ctx, targetID, words); err != nil {
		return nil, err
	}
	return closedChan, nil
}

// SpeakAndWait starts speaking words with target's voice. The returned
// channel is closed once playback has stopped, or at once if the speech
// could not be requested.
func (e *Extension) SpeakAndWait(ctx context.Context, targetID, words string) (<-chan struct{}, error) {
	return e.speak(ctx, targetID, words)
}

func (e *Extension) speak(ctx context.Context, targetID, words string) (<-chan struct{}, error) {
	voice, err := e.VoiceID(targetID)
	if err != nil {
		return nil, fmt.Errorf("extension: speak: %w", err)
	}
	req, err := e.builder.Build(words, voice, e.CurrentLanguage())
	if err != nil {
		observe.ComponentLogger(ctx, "extension").Warn("speech not requested",
			"target", targetID, "voice", voice, "err", err)
		return closedChan, nil
	}
	return e.speaker.Speak(ctx, req), nil
}
