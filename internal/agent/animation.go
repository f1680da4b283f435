package agent

import (
	"context"
	"log"
	"sync"

	"github.com/shirokuma-ai/companion/internal/analysis/emotion"
)

// AnimationAgent toggles the companion's animation state from the emotion
// channel. Actual rendering lives outside this process; the agent tracks the
// current emotion and names the animation asset to play.
type AnimationAgent struct {
	Base
	input <-chan emotion.Emotion

	mu      sync.Mutex
	current emotion.Emotion
}

// NewAnimationAgent builds an animation consumer for the given channel.
func NewAnimationAgent(input <-chan emotion.Emotion) *AnimationAgent {
	return &AnimationAgent{
		Base:    Base{name: "animation"},
		input:   input,
		current: emotion.Default,
	}
}

// Start launches the consumer loop.
func (a *AnimationAgent) Start(ctx context.Context) {
	a.start(ctx, a.run)
}

// Current returns the emotion the agent is presently animating.
func (a *AnimationAgent) Current() emotion.Emotion {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *AnimationAgent) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case emo, ok := <-a.input:
			if !ok {
				return
			}
			a.handle(emo)
		}
	}
}

func (a *AnimationAgent) handle(emo emotion.Emotion) {
	if !emotion.Known(emo) {
		log.Printf("[agent] animation received invalid emotion: %s", emo)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if emo == a.current {
		return
	}

	log.Printf("[agent] emotion change: %s -> %s", a.current, emo)
	a.current = emo
	log.Printf("[agent] playing animation: %s", emotion.AnimationFile(emo))
}
