package greeting

import (
	"math/rand/v2"
	"sync"
)

// Greetings are the launch greetings the bot picks from when it joins a
// voice channel.
var Greetings = []string{
	"Greetings! What do you want me to say?",
	"Hi! What do you want me to repeat?",
	"Hello! What can I say for you?",
	"Hello! What do you want me to repeat back to you?",
	"Hello! What phrase do you want me to repeat back to you?",
}

const (
	Instructions = `Make sure to start your phrase with "repeat..." followed by what you want me to say.`
	Reprompt     = `Sorry, I couldn't understand what you said. ` + Instructions
	Help         = `Say "repeat..." followed by what you want me to say`
	HelpExample  = `Try saying: "repeat “I like watching Spongebob”", or any phrase you'd like.`
	Fallback     = Help
	Goodbye      = "Goodbye!"
	CardTitle    = "Here you go..."
)

// Selector picks candidates uniformly at random from its own source.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector returns a Selector drawing from src. A nil src uses a
// randomly seeded generator.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{
		rng: rand.New(src),
	}
}

// Pick returns one of candidates. It panics if candidates is empty.
func (s *Selector) Pick(candidates []string) string {
	if len(candidates) == 0 {
		panic("greeting: Pick called with no candidates")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return candidates[s.rng.IntN(len(candidates))]
}

// Launch returns a random greeting followed by the instructions.
func (s *Selector) Launch() string {
	return s.Pick(Greetings) + " " + Instructions
}
