package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/kechako/mockingbird/bot/internal/store"
	"github.com/kechako/mockingbird/bot/internal/voice"
	"github.com/kechako/mockingbird/greeting"
	"github.com/kechako/mockingbird/mocking"
	"github.com/kechako/mockingbird/tts"
)

var (
	errAlreadyJoined = errors.New("mockingbird already joined")
	errHasNotJoined  = errors.New("mockingbird has not joined any channels")
	errUnknownOption = errors.New("unknown command option")
)

const ttsSampleRate = 48000

// speakTimeout bounds the synthesis and playback of one reply.
const speakTimeout = 2 * time.Minute

type Bot struct {
	cfg      *Config
	s        *discordgo.Session
	tts      *tts.Client
	store    *store.Store
	mocker   *mocking.Generator
	greeter  *greeting.Selector
	logger   *slog.Logger
	commands []*discordgo.ApplicationCommand

	mu       sync.RWMutex
	sessions map[string]*voice.Session

	exit func()
}

func New(ctx context.Context, cfg *Config) (*Bot, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("bot.New: %w", err)
	}

	ttsOpts := []tts.ClientOption{
		tts.WithSampleRate(ttsSampleRate),
		tts.WithLanguageCode(cfg.Speech.LanguageCode),
	}
	if credJSON, err := cfg.getCredentialsJSON(); err != nil {
		return nil, fmt.Errorf("bot.New: %w", err)
	} else if len(credJSON) > 0 {
		ttsOpts = append(ttsOpts, tts.WithCredentialsJSON(credJSON))
	}

	c, err := tts.New(ctx, ttsOpts...)
	if err != nil {
		return nil, fmt.Errorf("bot.New: %w", err)
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("bot.New: %w", err)
	}

	bot := &Bot{
		cfg:      cfg,
		s:        s,
		tts:      c,
		store:    st,
		mocker:   mocking.New(cfg.Speech.GeneratorOptions()...),
		greeter:  greeting.NewSelector(nil),
		logger:   slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})),
		sessions: make(map[string]*voice.Session),
	}

	if err := bot.init(); err != nil {
		return nil, err
	}

	return bot, nil
}

func (bot *Bot) init() error {
	s := bot.s

	// Register ready as a callback for the ready events.
	s.AddHandler(bot.handleReady)

	// Register messageCreate as a callback for the messageCreate events.
	s.AddHandler(bot.handleMessageCreate)

	// Register guildCreate as a callback for the guildCreate events.
	s.AddHandler(bot.handleGuildCreate)

	s.AddHandler(bot.handleInteractionCreate)

	// We need information about guilds (which includes their channels),
	// messages and voice states.
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent | discordgo.IntentsGuildVoiceStates

	return nil
}

func (bot *Bot) Close() error {
	var errs []error

	if bot.exit != nil {
		bot.exit()
	}

	bot.cleanupApplicationCommands()

	bot.mu.Lock()
	for guildID, vs := range bot.sessions {
		if err := vs.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(bot.sessions, guildID)
	}
	bot.mu.Unlock()

	if err := bot.s.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := bot.tts.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := bot.store.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("bot.Bot.Close: %w", errors.Join(errs...))
	}

	return nil
}

func (bot *Bot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	bot.exit = cancel

	err := bot.s.Open()
	if err != nil {
		return fmt.Errorf("bot.Bot.Start: %w", err)
	}

	<-ctx.Done()

	return nil
}

func (bot *Bot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	bot.logger.Info("ready")
	s.UpdateGameStatus(0, "repeat after me")

	commands, err := bot.getApplicationCommands(context.Background())
	if err != nil {
		bot.logger.Error("failed to get application commands", slog.Any("error", err))
		return
	}

	for _, cmd := range commands {
		cmd, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd)
		if err != nil {
			bot.logger.Error("failed to create application command", slog.Any("error", err))
			continue
		}
		bot.commands = append(bot.commands, cmd)
	}
}

func (bot *Bot) handleMessageCreate(s *discordgo.Session, event *discordgo.MessageCreate) {
	vs, ok := bot.session(event.GuildID)
	if !ok {
		return
	}

	embeds, parts := bot.messageReply(s.State.User.ID, vs.TextChannelID(), event.Message)
	if len(embeds) == 0 {
		return
	}

	bot.reply(event.Message, embeds...)
	if len(parts) > 0 {
		bot.speak(vs, event.Author.ID, parts, tts.SSML)
	}
}

// messageReply decides how to answer m when the bot listens to
// textChannelID. It returns no embeds when m is not for the bot, and the
// markup documents to speak, if any.
func (bot *Bot) messageReply(selfID, textChannelID string, m *discordgo.Message) ([]*discordgo.MessageEmbed, []string) {
	if m.Author == nil || m.Author.ID == selfID || m.ChannelID != textChannelID {
		return nil, nil
	}

	phrase, ok := parsePhrase(bot.cfg.Prefix, contentWithMentionsReplaced(m, selfID))
	if !ok {
		if mentions(m, selfID) {
			return []*discordgo.MessageEmbed{createEmbed(greeting.Fallback, greeting.HelpExample, colorInfo)}, nil
		}
		return nil, nil
	}
	if phrase == "" {
		return []*discordgo.MessageEmbed{createEmbed(greeting.Reprompt, "", colorWarn)}, nil
	}

	return bot.mock(phrase, true)
}

// mock renders phrase as the reply embeds and, when speaking, the markup
// documents that fit into synthesis requests.
func (bot *Bot) mock(phrase string, speaking bool) ([]*discordgo.MessageEmbed, []string) {
	result := bot.mocker.Speak(phrase)
	embeds := []*discordgo.MessageEmbed{mockEmbed(result.Text)}
	if !speaking {
		return embeds, nil
	}

	if len(result.Speech) <= tts.MaxInputBytes {
		return embeds, []string{result.Speech}
	}

	parts, err := bot.mocker.SpeechParts(phrase, tts.MaxInputBytes)
	if err != nil {
		bot.logger.Warn("phrase cannot be spoken", slog.Int("bytes", len(result.Speech)), slog.Any("error", err))
		return append(embeds, createEmbed("Too long to say", "A word in that phrase is too long to say out loud.", colorWarn)), nil
	}

	return embeds, parts
}

func (bot *Bot) reply(m *discordgo.Message, embeds ...*discordgo.MessageEmbed) {
	_, err := bot.s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    embeds,
		Reference: m.Reference(),
	})
	if err != nil {
		bot.logger.Error("failed to send message", slog.String("channel_id", m.ChannelID), slog.Any("error", err))
	}
}

// speak reads inputs aloud in the voice channel of vs with the voice
// settings of userID.
func (bot *Bot) speak(vs *voice.Session, userID string, inputs []string, mode tts.InputMode) {
	ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
	defer cancel()

	opts := []tts.SynthesizeSpeechOption{
		tts.WithInputMode(mode),
	}
	if userID != "" {
		setting, err := bot.store.Get(ctx, userID)
		if err == nil {
			opts = append(opts, setting.Options()...)
		} else if !errors.Is(err, store.ErrNotFound) {
			bot.logger.Error("failed to get voice setting", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	err := vs.Read(ctx, inputs, opts...)
	if err != nil {
		bot.logger.Error("failed to speak", slog.String("guild_id", vs.GuildID()), slog.Any("error", err))
	}
}

func (bot *Bot) handleGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	bot.logger.Info("guild created", slog.String("guild_id", event.ID), slog.String("guild_name", event.Name))
}

func (bot *Bot) handleInteractionCreate(s *discordgo.Session, event *discordgo.InteractionCreate) {
	if event.Type != discordgo.InteractionApplicationCommand {
		return
	}

	var (
		res   *discordgo.InteractionResponse
		after func()
		err   error
	)

	data := event.ApplicationCommandData()
	if data.Name == commandName && len(data.Options) > 0 {
		res, after, err = bot.runCommand(event, data.Options[0])
	} else {
		err = fmt.Errorf("%w: %s", errUnknownOption, data.Name)
	}
	if err != nil {
		bot.logger.Error("error handled", slog.String("command", data.Name), slog.Any("error", err))
		res = createFallbackResponse()
		after = nil
	}

	if err := s.InteractionRespond(event.Interaction, res); err != nil {
		bot.logger.Error("failed to respond to interaction", slog.Any("error", err))
	}

	if after != nil {
		after()
	}
}

// runCommand handles a sub-command of /mock. The returned function, if any,
// runs after the response has been sent.
func (bot *Bot) runCommand(event *discordgo.InteractionCreate, subCmd *discordgo.ApplicationCommandInteractionDataOption) (*discordgo.InteractionResponse, func(), error) {
	guildID := event.GuildID
	channelID := event.ChannelID
	userID := interactionUserID(event)

	switch subCmd.Name {
	case "join":
		opt, err := option(subCmd, "voice-channel")
		if err != nil {
			return nil, nil, err
		}
		voiceChannelID := opt.ChannelValue(nil).ID

		vs, err := bot.join(guildID, channelID, voiceChannelID)
		if err != nil {
			if errors.Is(err, errAlreadyJoined) {
				return createWarnResponse("Already here", fmt.Sprintf("I'm already in <#%s>, repeating <#%s>.", vs.VoiceChannelID(), vs.TextChannelID())), nil, nil
			}
			return nil, nil, err
		}

		launch := bot.greeter.Launch()
		return createSuccessResponse(launch, fmt.Sprintf("Joined <#%s>.", vs.VoiceChannelID())), func() {
			bot.speak(vs, "", []string{launch}, tts.Text)
		}, nil
	case "leave":
		voiceChannelID, err := bot.leave(guildID)
		if err != nil {
			if errors.Is(err, errHasNotJoined) {
				return createWarnResponse("I'm not in a voice channel", ""), nil, nil
			}
			return nil, nil, err
		}
		return createInfoResponse(greeting.Goodbye, fmt.Sprintf("Left <#%s>.", voiceChannelID)), nil, nil
	case "say":
		opt, err := option(subCmd, "phrase")
		if err != nil {
			return nil, nil, err
		}

		vs, joined := bot.session(guildID)
		embeds, parts := bot.mock(opt.StringValue(), joined)

		var after func()
		if len(parts) > 0 {
			after = func() {
				bot.speak(vs, userID, parts, tts.SSML)
			}
		}
		return createMockResponse(embeds...), after, nil
	case "help":
		return createInfoResponse(greeting.Help, greeting.HelpExample), nil, nil
	case "voice":
		opt, err := option(subCmd, "voice")
		if err != nil {
			return nil, nil, err
		}
		voiceName := opt.StringValue()

		err = bot.putVoiceSetting(&store.VoiceSetting{UserID: userID, VoiceName: &voiceName})
		if err != nil {
			return nil, nil, err
		}
		return createSuccessResponse("Voice settings", fmt.Sprintf("Your voice is now %q.", voiceName)), nil, nil
	case "speed":
		opt, err := option(subCmd, "speed")
		if err != nil {
			return nil, nil, err
		}
		speakingRate := opt.FloatValue()

		err = bot.putVoiceSetting(&store.VoiceSetting{UserID: userID, SpeakingRate: &speakingRate})
		if err != nil {
			return nil, nil, err
		}
		return createSuccessResponse("Voice settings", fmt.Sprintf("Your speaking rate is now %.02f.", speakingRate)), nil, nil
	case "pitch":
		opt, err := option(subCmd, "pitch")
		if err != nil {
			return nil, nil, err
		}
		pitch := opt.FloatValue()

		err = bot.putVoiceSetting(&store.VoiceSetting{UserID: userID, Pitch: &pitch})
		if err != nil {
			return nil, nil, err
		}
		return createSuccessResponse("Voice settings", fmt.Sprintf("Your pitch is now %.01f.", pitch)), nil, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", errUnknownOption, subCmd.Name)
}

func option(subCmd *discordgo.ApplicationCommandInteractionDataOption, name string) (*discordgo.ApplicationCommandInteractionDataOption, error) {
	for _, opt := range subCmd.Options {
		if opt.Name == name {
			return opt, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s", errUnknownOption, subCmd.Name, name)
}

func interactionUserID(event *discordgo.InteractionCreate) string {
	if event.Member != nil && event.Member.User != nil {
		return event.Member.User.ID
	}
	if event.User != nil {
		return event.User.ID
	}
	return ""
}

func (bot *Bot) putVoiceSetting(vs *store.VoiceSetting) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := bot.store.Put(ctx, vs)
	if err != nil {
		return fmt.Errorf("bot.Bot.putVoiceSetting: %w", err)
	}
	return nil
}

func (bot *Bot) cleanupApplicationCommands() {
	for _, cmd := range bot.commands {
		err := bot.s.ApplicationCommandDelete(bot.s.State.User.ID, "", cmd.ID)
		if err != nil {
			bot.logger.Error("failed to delete application command", slog.Any("error", err))
		}
	}
	bot.commands = nil
}

func (bot *Bot) session(guildID string) (*voice.Session, bool) {
	bot.mu.RLock()
	defer bot.mu.RUnlock()

	vs, ok := bot.sessions[guildID]
	return vs, ok
}

func (bot *Bot) join(guildID, textChannelID, voiceChannelID string) (*voice.Session, error) {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	vs, ok := bot.sessions[guildID]
	if ok {
		return vs, errAlreadyJoined
	}

	vs, err := voice.New(&voice.Config{
		Session:        bot.s,
		TTS:            bot.tts,
		GuildID:        guildID,
		TextChannelID:  textChannelID,
		VoiceChannelID: voiceChannelID,
		SampleRate:     ttsSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("bot.Bot.join: %w", err)
	}
	bot.sessions[guildID] = vs

	return vs, nil
}

func (bot *Bot) leave(guildID string) (string, error) {
	bot.mu.Lock()
	defer bot.mu.Unlock()

	vs, ok := bot.sessions[guildID]
	if !ok {
		return "", errHasNotJoined
	}

	err := vs.Close()
	if err != nil {
		return "", fmt.Errorf("bot.Bot.leave: %w", err)
	}

	delete(bot.sessions, guildID)

	return vs.VoiceChannelID(), nil
}
