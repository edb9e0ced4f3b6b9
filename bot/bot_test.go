package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"github.com/kechako/mockingbird/bot/internal/store"
	"github.com/kechako/mockingbird/bot/internal/voice"
	"github.com/kechako/mockingbird/greeting"
	"github.com/kechako/mockingbird/mocking"
	"github.com/kechako/mockingbird/tts"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatalf("store.Open(): %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})

	cfg := DefaultConfig()
	return &Bot{
		cfg:      cfg,
		store:    st,
		mocker:   mocking.New(cfg.Speech.GeneratorOptions()...),
		greeter:  greeting.NewSelector(rand.NewPCG(1, 2)),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: make(map[string]*voice.Session),
	}
}

func newCommandEvent(userID string, subCmd *discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   "guild",
			ChannelID: "text",
			Member: &discordgo.Member{
				User: &discordgo.User{ID: userID},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    commandName,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{subCmd},
			},
		},
	}
}

func TestRunCommandSay(t *testing.T) {
	bot := newTestBot(t)

	subCmd := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "say",
		Type: discordgo.ApplicationCommandOptionSubCommand,
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "phrase", Type: discordgo.ApplicationCommandOptionString, Value: "I like watching Spongebob"},
		},
	}

	res, after, err := bot.runCommand(newCommandEvent("u1", subCmd), subCmd)
	if err != nil {
		t.Fatalf("Bot.runCommand(say): %v", err)
	}
	if after != nil {
		t.Error("Bot.runCommand(say): expected no speech without a voice session")
	}

	want := createMockResponse(mockEmbed("i LiKe WaTcHiNg SpOnGeBoB"))
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Bot.runCommand(say) mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCommandHelp(t *testing.T) {
	bot := newTestBot(t)

	subCmd := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "help",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}
	res, _, err := bot.runCommand(newCommandEvent("u1", subCmd), subCmd)
	if err != nil {
		t.Fatalf("Bot.runCommand(help): %v", err)
	}

	want := createInfoResponse(greeting.Help, greeting.HelpExample)
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("Bot.runCommand(help) mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCommandLeaveNotJoined(t *testing.T) {
	bot := newTestBot(t)

	subCmd := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "leave",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}
	res, _, err := bot.runCommand(newCommandEvent("u1", subCmd), subCmd)
	if err != nil {
		t.Fatalf("Bot.runCommand(leave): %v", err)
	}
	if got := res.Data.Embeds[0].Color; got != colorWarn {
		t.Errorf("Bot.runCommand(leave): color got %#x, want %#x", got, colorWarn)
	}
}

func TestRunCommandVoiceSettings(t *testing.T) {
	bot := newTestBot(t)

	subCmds := []*discordgo.ApplicationCommandInteractionDataOption{
		{
			Name: "voice",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "voice", Type: discordgo.ApplicationCommandOptionString, Value: "en-US-Standard-B"},
			},
		},
		{
			Name: "speed",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "speed", Type: discordgo.ApplicationCommandOptionNumber, Value: 1.25},
			},
		},
		{
			Name: "pitch",
			Type: discordgo.ApplicationCommandOptionSubCommand,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "pitch", Type: discordgo.ApplicationCommandOptionNumber, Value: -2.0},
			},
		},
	}
	for i, subCmd := range subCmds {
		t.Run(fmt.Sprintf("test_%02d", i+1), func(t *testing.T) {
			res, _, err := bot.runCommand(newCommandEvent("u1", subCmd), subCmd)
			if err != nil {
				t.Fatalf("Bot.runCommand(%s): %v", subCmd.Name, err)
			}
			if got := res.Data.Embeds[0].Color; got != colorSuccess {
				t.Errorf("Bot.runCommand(%s): color got %#x, want %#x", subCmd.Name, got, colorSuccess)
			}
		})
	}

	got, err := bot.store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("store.Store.Get(): %v", err)
	}
	voiceName, speakingRate, pitch := "en-US-Standard-B", 1.25, -2.0
	want := &store.VoiceSetting{
		UserID:       "u1",
		VoiceName:    &voiceName,
		SpeakingRate: &speakingRate,
		Pitch:        &pitch,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored voice setting mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCommandUnknown(t *testing.T) {
	bot := newTestBot(t)

	subCmd := &discordgo.ApplicationCommandInteractionDataOption{
		Name: "dance",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}
	_, _, err := bot.runCommand(newCommandEvent("u1", subCmd), subCmd)
	if !errors.Is(err, errUnknownOption) {
		t.Errorf("Bot.runCommand(dance): got %v, want %v", err, errUnknownOption)
	}

	subCmd = &discordgo.ApplicationCommandInteractionDataOption{
		Name: "say",
		Type: discordgo.ApplicationCommandOptionSubCommand,
	}
	_, _, err = bot.runCommand(newCommandEvent("u1", subCmd), subCmd)
	if !errors.Is(err, errUnknownOption) {
		t.Errorf("Bot.runCommand(say without phrase): got %v, want %v", err, errUnknownOption)
	}
}

func TestInteractionUserID(t *testing.T) {
	event := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "dm-user"},
	}}
	if got := interactionUserID(event); got != "dm-user" {
		t.Errorf("interactionUserID(): got %q, want %q", got, "dm-user")
	}

	event = &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}
	if got := interactionUserID(event); got != "" {
		t.Errorf("interactionUserID(): got %q, want empty", got)
	}
}

func TestVoiceChoices(t *testing.T) {
	voices := make([]*tts.Voice, 30)
	for i := range voices {
		voices[i] = &tts.Voice{Name: fmt.Sprintf("en-US-Standard-%02d", i), SsmlGender: tts.GenderFemale}
	}

	choices := voiceChoices(voices)
	if len(choices) != maxChoices {
		t.Fatalf("voiceChoices(): got %d choices, want %d", len(choices), maxChoices)
	}

	want := &discordgo.ApplicationCommandOptionChoice{
		Name:  "en-US-Standard-00 (female)",
		Value: "en-US-Standard-00",
	}
	if diff := cmp.Diff(want, choices[0]); diff != "" {
		t.Errorf("voiceChoices()[0] mismatch (-want +got):\n%s", diff)
	}
}

func TestApplicationCommands(t *testing.T) {
	commands := applicationCommands(nil)
	if len(commands) != 1 || commands[0].Name != commandName {
		t.Fatalf("applicationCommands(): got %d commands", len(commands))
	}

	var names []string
	for _, opt := range commands[0].Options {
		names = append(names, opt.Name)
	}
	want := []string{"join", "leave", "say", "help", "voice", "speed", "pitch"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("applicationCommands() sub-commands mismatch (-want +got):\n%s", diff)
	}
}

func TestMockEmbed(t *testing.T) {
	got := mockEmbed("")
	if got.Description == "" {
		t.Error("mockEmbed(\"\"): empty description")
	}
	if got.Title != greeting.CardTitle {
		t.Errorf("mockEmbed(): title got %q, want %q", got.Title, greeting.CardTitle)
	}
}

func newMessage(authorID, channelID, content string, mentions ...*discordgo.User) *discordgo.Message {
	return &discordgo.Message{
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
		Mentions:  mentions,
	}
}

func TestMessageReplyIgnored(t *testing.T) {
	bot := newTestBot(t)

	messages := []*discordgo.Message{
		newMessage("self", "text", "repeat hello"),
		newMessage("u1", "other", "repeat hello"),
		newMessage("u1", "text", "hello there"),
		{ChannelID: "text", Content: "repeat hello"},
	}
	for i, m := range messages {
		t.Run(fmt.Sprintf("test_%02d", i+1), func(t *testing.T) {
			embeds, parts := bot.messageReply("self", "text", m)
			if len(embeds) != 0 || len(parts) != 0 {
				t.Errorf("Bot.messageReply(%q): got %d embeds and %d parts, want none", m.Content, len(embeds), len(parts))
			}
		})
	}
}

func TestMessageReply(t *testing.T) {
	bot := newTestBot(t)

	tests := []struct {
		m      *discordgo.Message
		embeds []*discordgo.MessageEmbed
		parts  []string
	}{
		{
			m:      newMessage("u1", "text", "<@self>", &discordgo.User{ID: "self", Username: "mockingbird"}),
			embeds: []*discordgo.MessageEmbed{createEmbed(greeting.Fallback, greeting.HelpExample, colorInfo)},
		},
		{
			m:      newMessage("u1", "text", "repeat..."),
			embeds: []*discordgo.MessageEmbed{createEmbed(greeting.Reprompt, "", colorWarn)},
		},
		{
			m:      newMessage("u1", "text", "Repeat: I like watching Spongebob"),
			embeds: []*discordgo.MessageEmbed{mockEmbed("i LiKe WaTcHiNg SpOnGeBoB")},
			parts:  []string{mocking.Speak("I like watching Spongebob").Speech},
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("test_%02d", i+1), func(t *testing.T) {
			embeds, parts := bot.messageReply("self", "text", tt.m)
			if diff := cmp.Diff(tt.embeds, embeds); diff != "" {
				t.Errorf("Bot.messageReply(%q) embeds mismatch (-want +got):\n%s", tt.m.Content, diff)
			}
			if diff := cmp.Diff(tt.parts, parts); diff != "" {
				t.Errorf("Bot.messageReply(%q) parts mismatch (-want +got):\n%s", tt.m.Content, diff)
			}
		})
	}
}

func TestMessageReplyLongPhrase(t *testing.T) {
	bot := newTestBot(t)

	phrase := strings.TrimSpace(strings.Repeat("Spongebob's ", 165))
	embeds, parts := bot.messageReply("self", "text", newMessage("u1", "text", "repeat "+phrase))
	if len(embeds) != 1 {
		t.Fatalf("Bot.messageReply(): got %d embeds, want 1", len(embeds))
	}
	if len(parts) < 2 {
		t.Fatalf("Bot.messageReply(): got %d parts, want at least 2", len(parts))
	}
	for i, part := range parts {
		if len(part) > tts.MaxInputBytes {
			t.Errorf("part %d: got %d bytes, want at most %d", i, len(part), tts.MaxInputBytes)
		}
	}
}

func TestMessageReplyUnspeakable(t *testing.T) {
	bot := newTestBot(t)

	embeds, parts := bot.messageReply("self", "text", newMessage("u1", "text", "repeat "+strings.Repeat("&", 1000)))
	if len(parts) != 0 {
		t.Errorf("Bot.messageReply(): got %d parts, want none", len(parts))
	}
	if len(embeds) != 2 || embeds[1].Color != colorWarn {
		t.Fatalf("Bot.messageReply(): want the mocking card and a warning, got %d embeds", len(embeds))
	}
}

func TestMockPhraseLengthSpeakable(t *testing.T) {
	bot := newTestBot(t)

	// the longest phrase the say command accepts, as one word of the
	// character with the longest escape
	phrase := strings.Repeat("'", maxPhraseLength)
	embeds, parts := bot.mock(phrase, true)
	if len(embeds) != 1 || len(parts) != 1 {
		t.Fatalf("Bot.mock(): got %d embeds and %d parts, want 1 and 1", len(embeds), len(parts))
	}

	embeds, parts = bot.mock(strings.TrimSpace(strings.Repeat("& ", maxPhraseLength/2)), true)
	if len(embeds) != 1 || len(parts) == 0 {
		t.Fatalf("Bot.mock(): got %d embeds and %d parts", len(embeds), len(parts))
	}
	for i, part := range parts {
		if len(part) > tts.MaxInputBytes {
			t.Errorf("part %d: got %d bytes, want at most %d", i, len(part), tts.MaxInputBytes)
		}
	}

	if _, parts := bot.mock(phrase, false); parts != nil {
		t.Errorf("Bot.mock() without speaking: got %d parts, want none", len(parts))
	}
}
