package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/kechako/mockingbird/tts"
)

const commandName = "mock"

// maxChoices is the number of choices Discord accepts for one option.
const maxChoices = 25

// maxPhraseLength keeps every word of a phrase speakable: a single word of
// this length, escaped at six bytes per character, still fits one synthesis
// request. Longer phrases are spoken in several requests.
const maxPhraseLength = 300

func voiceChoices(voices []*tts.Voice) []*discordgo.ApplicationCommandOptionChoice {
	voices = voices[:min(len(voices), maxChoices)]

	choices := make([]*discordgo.ApplicationCommandOptionChoice, len(voices))
	for i, voice := range voices {
		var gender string
		switch voice.SsmlGender {
		case tts.GenderMale:
			gender = "male"
		case tts.GenderFemale:
			gender = "female"
		case tts.GenderNeutral:
			gender = "neutral"
		default:
			gender = "unspecified"
		}

		choices[i] = &discordgo.ApplicationCommandOptionChoice{
			Name:  fmt.Sprintf("%s (%s)", voice.Name, gender),
			Value: voice.Name,
		}
	}
	return choices
}

func (bot *Bot) getApplicationCommands(ctx context.Context) ([]*discordgo.ApplicationCommand, error) {
	voices, err := bot.tts.ListVoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("bot.Bot.getApplicationCommands: %w", err)
	}

	return applicationCommands(voiceChoices(tts.FilterVoices(voices, bot.cfg.Speech.LanguageCode))), nil
}

func applicationCommands(voiceChoices []*discordgo.ApplicationCommandOptionChoice) []*discordgo.ApplicationCommand {
	var (
		minSpeed        = float64(tts.MinSpeakingRate)
		maxSpeed        = float64(tts.MaxSpeakingRate)
		minPitch        = float64(tts.MinPitch)
		maxPitch        = float64(tts.MaxPitch)
		minPhraseLength = 1
	)

	return []*discordgo.ApplicationCommand{
		{
			Name:        commandName,
			Description: "Makes mockingbird repeat what you say, mockingly.",
			Type:        discordgo.ChatApplicationCommand,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "join",
					Description: "Joins a voice channel and starts listening to this channel.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:         "voice-channel",
							Description:  "The voice channel to speak in.",
							Type:         discordgo.ApplicationCommandOptionChannel,
							ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice},
							Required:     true,
						},
					},
				},
				{
					Name:        "leave",
					Description: "Leaves the voice channel.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "say",
					Description: "Repeats a phrase mockingly.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "phrase",
							Description: "What you want me to say.",
							Type:        discordgo.ApplicationCommandOptionString,
							MinLength:   &minPhraseLength,
							MaxLength:   maxPhraseLength,
							Required:    true,
						},
					},
				},
				{
					Name:        "help",
					Description: "Explains how to use mockingbird.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "voice",
					Description: "Changes the voice used for your phrases.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "voice",
							Description: "The voice.",
							Type:        discordgo.ApplicationCommandOptionString,
							Choices:     voiceChoices,
							Required:    true,
						},
					},
				},
				{
					Name:        "speed",
					Description: "Changes the speaking rate used for your phrases.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "speed",
							Description: "The speaking rate.",
							Type:        discordgo.ApplicationCommandOptionNumber,
							MinValue:    &minSpeed,
							MaxValue:    maxSpeed,
							Required:    true,
						},
					},
				},
				{
					Name:        "pitch",
					Description: "Changes the pitch used for your phrases.",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "pitch",
							Description: "The pitch in semitones.",
							Type:        discordgo.ApplicationCommandOptionNumber,
							MinValue:    &minPitch,
							MaxValue:    maxPitch,
							Required:    true,
						},
					},
				},
			},
		},
	}
}
