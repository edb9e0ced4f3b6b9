// Package store persists per-user voice settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kechako/mockingbird/tts"
	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("voice setting not found")

// VoiceSetting holds a user's synthesis preferences. Nil fields are unset
// and fall back to the synthesiser defaults.
type VoiceSetting struct {
	UserID       string
	VoiceName    *string
	SpeakingRate *float64
	Pitch        *float64
}

// Options converts the setting into synthesis options.
func (vs *VoiceSetting) Options() []tts.SynthesizeSpeechOption {
	var opts []tts.SynthesizeSpeechOption
	if vs.VoiceName != nil && *vs.VoiceName != "" {
		opts = append(opts, tts.WithVoiceName(*vs.VoiceName))
	}
	if vs.SpeakingRate != nil && *vs.SpeakingRate != tts.DefaultSpeakingRate {
		opts = append(opts, tts.WithSpeakingRate(*vs.SpeakingRate))
	}
	if vs.Pitch != nil && *vs.Pitch != tts.DefaultPitch {
		opts = append(opts, tts.WithPitch(*vs.Pitch))
	}
	return opts
}

const schema = `
CREATE TABLE IF NOT EXISTS voice_settings (
	user_id       TEXT PRIMARY KEY NOT NULL CHECK (user_id <> ''),
	voice_name    TEXT,
	speaking_rate REAL,
	pitch         REAL
)`

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store.Open: %w", err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store.Open: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, userID string) (*VoiceSetting, error) {
	var (
		voiceName    sql.NullString
		speakingRate sql.NullFloat64
		pitch        sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT voice_name, speaking_rate, pitch FROM voice_settings WHERE user_id = ?`,
		userID,
	).Scan(&voiceName, &speakingRate, &pitch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store.Store.Get: %w", err)
	}

	vs := &VoiceSetting{UserID: userID}
	if voiceName.Valid {
		vs.VoiceName = &voiceName.String
	}
	if speakingRate.Valid {
		vs.SpeakingRate = &speakingRate.Float64
	}
	if pitch.Valid {
		vs.Pitch = &pitch.Float64
	}

	return vs, nil
}

// Put stores vs. Nil fields keep the value already stored for the user.
func (s *Store) Put(ctx context.Context, vs *VoiceSetting) error {
	if vs.UserID == "" {
		return errors.New("store.Store.Put: empty user id")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO voice_settings (user_id, voice_name, speaking_rate, pitch)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET
	voice_name    = COALESCE(excluded.voice_name, voice_name),
	speaking_rate = COALESCE(excluded.speaking_rate, speaking_rate),
	pitch         = COALESCE(excluded.pitch, pitch)`,
		vs.UserID, vs.VoiceName, vs.SpeakingRate, vs.Pitch,
	)
	if err != nil {
		return fmt.Errorf("store.Store.Put: %w", err)
	}

	return nil
}
