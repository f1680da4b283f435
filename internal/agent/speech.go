package agent

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirokuma-ai/companion/internal/analysis/emotion"
)

const minPlaybackDuration = 500 * time.Millisecond

// SpeechAgent drives speech playback from the text channel. Playback is
// last-write-wins: a new reply interrupts whatever is still being spoken.
// Synthesis and audio output are external; playback is modeled by its
// estimated duration.
type SpeechAgent struct {
	Base
	input <-chan string

	// device serializes access to the audio output. Acquired for the whole
	// playback and released on every exit path, cancellation included.
	device      chan struct{}
	speaking    atomic.Bool
	playbackWG  sync.WaitGroup
	interruptFn context.CancelFunc
}

// NewSpeechAgent builds a speech consumer for the given channel.
func NewSpeechAgent(input <-chan string) *SpeechAgent {
	return &SpeechAgent{
		Base:   Base{name: "speech"},
		input:  input,
		device: make(chan struct{}, 1),
	}
}

// Start launches the consumer loop.
func (s *SpeechAgent) Start(ctx context.Context) {
	s.start(ctx, s.run)
}

// Busy reports whether the agent is mid-playback.
func (s *SpeechAgent) Busy() bool {
	return s.speaking.Load()
}

func (s *SpeechAgent) run(ctx context.Context) {
	defer s.playbackWG.Wait()

	for {
		select {
		case <-ctx.Done():
			s.interrupt()
			return
		case text, ok := <-s.input:
			if !ok {
				s.interrupt()
				return
			}
			s.speak(ctx, text)
		}
	}
}

// speak interrupts any in-flight playback and starts the new one.
func (s *SpeechAgent) speak(ctx context.Context, text string) {
	clean := emotion.Strip(text)
	if clean == "" {
		log.Printf("[agent] empty text received for speech synthesis")
		return
	}

	s.interrupt()

	playCtx, cancel := context.WithCancel(ctx)
	s.interruptFn = cancel

	s.playbackWG.Add(1)
	go s.play(playCtx, clean)
}

func (s *SpeechAgent) play(ctx context.Context, text string) {
	defer s.playbackWG.Done()

	select {
	case s.device <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-s.device }()

	s.speaking.Store(true)
	defer s.speaking.Store(false)

	duration := playbackDuration(text)
	log.Printf("[agent] speaking for ~%.1fs: %q", duration.Seconds(), text)

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		log.Printf("[agent] speech interrupted")
	}
}

func (s *SpeechAgent) interrupt() {
	if s.interruptFn != nil {
		s.interruptFn()
		s.interruptFn = nil
	}
}

// playbackDuration estimates speaking time at roughly 100ms per word with a
// half-second floor.
func playbackDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	duration := time.Duration(words) * 100 * time.Millisecond
	if duration < minPlaybackDuration {
		duration = minPlaybackDuration
	}
	return duration
}
