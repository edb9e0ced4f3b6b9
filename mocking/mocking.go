// Package mocking renders a phrase the way a sarcastic parrot would repeat
// it: as aLtErNaTiNg case text, and as speech markup whose words alternate
// between a raised pitch and a lowered, de-emphasised one while the speech
// rate slows down towards the end of the phrase.
//
// Everything in this package is a pure function of its input and is safe
// for concurrent use.
package mocking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kechako/mockingbird/ssml"
)

const (
	DefaultVoiceName = "Mathieu"
	DefaultLanguage  = "en-US"

	DefaultEvenPitch = 6
	DefaultOddPitch  = -33
)

// Result is a phrase rendered both ways.
type Result struct {
	// Speech is a complete SSML document.
	Speech string
	// Text is the phrase in mocking case.
	Text string
}

type Generator struct {
	opts *generatorOptions
}

func New(opts ...Option) *Generator {
	options := generatorOptions{
		voiceName:    DefaultVoiceName,
		language:     DefaultLanguage,
		rateSchedule: DefaultRateSchedule,
		evenPitch:    DefaultEvenPitch,
		oddPitch:     DefaultOddPitch,
	}
	for _, opt := range opts {
		opt.apply(&options)
	}

	return &Generator{
		opts: &options,
	}
}

var defaultGenerator = New()

// Speak renders phrase with the default voice, language and rate schedule.
func Speak(phrase string) Result {
	return defaultGenerator.Speak(phrase)
}

func (g *Generator) Speak(phrase string) Result {
	return Result{
		Speech: g.Document(phrase).ToSSML(),
		Text:   Alternate(phrase),
	}
}

// Document builds the speech markup tree for phrase. The phrase is split on
// single spaces, so consecutive spaces yield empty words and an empty phrase
// yields one empty word.
func (g *Generator) Document(phrase string) *ssml.SSML {
	words := g.words(phrase)

	nodes := make([]ssml.Node, 0, 2*len(words)-1)
	for i, word := range words {
		if i > 0 {
			nodes = append(nodes, ssml.Text(" "))
		}
		nodes = append(nodes, word)
	}

	return g.document(nodes)
}

// SpeechParts renders phrase as markup documents of at most limit bytes
// each. Words keep the rate and pitch they have in the single document and
// are never split across documents. A phrase whose single document fits
// yields exactly Speak(phrase).Speech.
func (g *Generator) SpeechParts(phrase string, limit int) ([]string, error) {
	overhead := ssml.MarkupSize(g.document(nil))

	var (
		parts   []string
		current []ssml.Node
		size    = overhead
	)
	for _, word := range g.words(phrase) {
		n := ssml.MarkupSize(word)
		if overhead+n > limit {
			return nil, fmt.Errorf("mocking.Generator.SpeechParts: %w: %d bytes", ErrWordTooLong, overhead+n)
		}

		if len(current) > 0 {
			if size+1+n <= limit {
				current = append(current, ssml.Text(" "), word)
				size += 1 + n
				continue
			}
			parts = append(parts, g.document(current).ToSSML())
			current = nil
			size = overhead
		}

		current = append(current, word)
		size += n
	}

	return append(parts, g.document(current).ToSSML()), nil
}

var ErrWordTooLong = errors.New("word too long")

// words returns the prosody element of each word of phrase, with the rate
// of its position in the whole phrase.
func (g *Generator) words(phrase string) []ssml.Node {
	words := strings.Split(phrase, " ")
	lastIndex := len(words) - 1

	nodes := make([]ssml.Node, len(words))
	for i, word := range words {
		rate := ssml.Percent(g.opts.rateSchedule.Rate(lastIndex, i))
		if i%2 == 0 {
			nodes[i] = &ssml.Prosody{
				Rate:  rate,
				Pitch: ssml.SignedPercent(g.opts.evenPitch),
				Nodes: []ssml.Node{ssml.Text(word)},
			}
		} else {
			nodes[i] = &ssml.Prosody{
				Rate:  rate,
				Pitch: ssml.SignedPercent(g.opts.oddPitch),
				Nodes: []ssml.Node{
					&ssml.Emphasis{
						Level: ssml.Reduced,
						Nodes: []ssml.Node{ssml.Text(word)},
					},
				},
			}
		}
	}

	return nodes
}

func (g *Generator) document(nodes []ssml.Node) *ssml.SSML {
	root := ssml.New()
	root.AddNode(&ssml.Voice{
		Name: g.opts.voiceName,
		Nodes: []ssml.Node{
			&ssml.Lang{Lang: g.opts.language, Nodes: nodes},
		},
	})

	return root
}

type generatorOptions struct {
	voiceName    string
	language     string
	rateSchedule RateSchedule
	evenPitch    int
	oddPitch     int
}

type Option interface {
	apply(opts *generatorOptions)
}

type withVoiceName string

func (w withVoiceName) apply(o *generatorOptions) {
	o.voiceName = string(w)
}

// WithVoiceName sets the name attribute of the voice element.
func WithVoiceName(name string) Option {
	return withVoiceName(name)
}

type withLanguage string

func (w withLanguage) apply(o *generatorOptions) {
	o.language = string(w)
}

// WithLanguage sets the xml:lang of the lang element, e.g. "en-US".
func WithLanguage(lang string) Option {
	return withLanguage(lang)
}

type withRateSchedule RateSchedule

func (w withRateSchedule) apply(o *generatorOptions) {
	o.rateSchedule = RateSchedule(w)
}

func WithRateSchedule(rs RateSchedule) Option {
	return withRateSchedule(rs)
}

type withPitch struct {
	even int
	odd  int
}

func (w withPitch) apply(o *generatorOptions) {
	o.evenPitch = w.even
	o.oddPitch = w.odd
}

// WithPitch sets the relative pitch, in percent, of the words at even and
// odd positions.
func WithPitch(even, odd int) Option {
	return withPitch{even: even, odd: odd}
}
