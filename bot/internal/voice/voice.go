package voice

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/kechako/mockingbird/audio/pcm"
	"github.com/kechako/mockingbird/tts"
	"gopkg.in/hraban/opus.v2"
)

const frameSizeMs = 20

// maxOpusPacket is the largest packet a single opus frame can encode to.
const maxOpusPacket = 1276

type Config struct {
	Session        *discordgo.Session
	TTS            *tts.Client
	GuildID        string
	TextChannelID  string
	VoiceChannelID string
	SampleRate     int
}

// Session is the bot's presence in one guild: the voice channel it speaks
// in and the text channel it listens to.
type Session struct {
	s    *discordgo.Session
	conn *discordgo.VoiceConnection
	mu   sync.Mutex

	// ctx is cancelled by Close and stops any playback in progress.
	ctx    context.Context
	cancel context.CancelFunc

	tts *tts.Client
	enc *opus.Encoder

	framePool *pcm.FramePool

	guildID        string
	textChannelID  string
	voiceChannelID string
}

func New(cfg *Config) (*Session, error) {
	enc, err := opus.NewEncoder(cfg.SampleRate, 1, opus.AppVoIP)
	if err != nil {
		return nil, fmt.Errorf("voice.New: %w", err)
	}

	conn, err := cfg.Session.ChannelVoiceJoin(cfg.GuildID, cfg.VoiceChannelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("voice.New: %w", err)
	}

	return newSession(cfg, conn, enc), nil
}

func newSession(cfg *Config, conn *discordgo.VoiceConnection, enc *opus.Encoder) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		s:              cfg.Session,
		conn:           conn,
		ctx:            ctx,
		cancel:         cancel,
		tts:            cfg.TTS,
		enc:            enc,
		framePool:      pcm.NewFramePool(pcm.FrameSize(cfg.SampleRate, frameSizeMs)),
		guildID:        cfg.GuildID,
		textChannelID:  cfg.TextChannelID,
		voiceChannelID: cfg.VoiceChannelID,
	}
}

// Close stops the current playback, if any, and leaves the voice channel.
func (s *Session) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}

	conn := s.conn
	s.conn = nil
	if err := conn.Disconnect(); err != nil {
		return fmt.Errorf("voice.Session.Close: %w", err)
	}

	return nil
}

func (s *Session) closed() bool {
	return s.ctx.Err() != nil
}

func (s *Session) GuildID() string {
	return s.guildID
}

func (s *Session) TextChannelID() string {
	return s.textChannelID
}

func (s *Session) VoiceChannelID() string {
	return s.voiceChannelID
}

// Read synthesises inputs and plays them in order in the voice channel,
// without other reads in between. Pass tts.WithInputMode(tts.SSML) when the
// inputs are speech markup documents. Reads on a closed session, and reads
// interrupted by Close, do nothing and return nil.
func (s *Session) Read(ctx context.Context, inputs []string, opts ...tts.SynthesizeSpeechOption) error {
	if s.closed() {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	audio := make([][]byte, len(inputs))
	for i, input := range inputs {
		p, err := s.tts.SynthesizeSpeech(ctx, input, opts...)
		if err != nil {
			if s.closed() {
				return nil
			}
			return fmt.Errorf("voice.Session.Read: %w", err)
		}
		audio[i] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}

	s.conn.Speaking(true)
	defer s.conn.Speaking(false)

	for _, p := range audio {
		err := s.play(ctx, p)
		if err != nil {
			if s.closed() {
				return nil
			}
			return fmt.Errorf("voice.Session.Read: %w", err)
		}
	}

	return nil
}

func (s *Session) play(ctx context.Context, p []byte) error {
	frame := s.framePool.Get()
	defer s.framePool.Put(frame)

	return pcm.SplitFrames(p, *frame, pcm.LittleEndian, func(data []int16) error {
		var buf [maxOpusPacket]byte
		n, err := s.enc.Encode(data, buf[:])
		if err != nil {
			return err
		}

		select {
		case s.conn.OpusSend <- buf[:n]:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})
}
