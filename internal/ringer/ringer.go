// Package ringer plays the ringing experience through the system audio
// device. The ringtone URI is pass-through from the alarm record: a
// readable WAV file plays looped, anything else falls back to the
// built-in tone.
package ringer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Raimguhinov/alarm-go/pkg/logger"
	"github.com/ebitengine/oto/v3"
)

type Tone struct {
	l          *logger.Logger
	sampleRate int
	freq       float64

	ctxOnce sync.Once
	otoCtx  *oto.Context
	ctxErr  error

	mu     sync.Mutex
	player *oto.Player
}

func NewTone(l *logger.Logger, sampleRate int, freq float64) *Tone {
	return &Tone{l: l, sampleRate: sampleRate, freq: freq}
}

// The audio device context can only be opened once per process.
func (t *Tone) context() (*oto.Context, error) {
	t.ctxOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   t.sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			t.ctxErr = fmt.Errorf("ringer - context - oto.NewContext: %w", err)
			return
		}
		<-ready
		t.otoCtx = ctx
	})
	return t.otoCtx, t.ctxErr
}

func (t *Tone) Start(_ context.Context, alarmID int, ringtoneURI string) error {
	otoCtx, err := t.context()
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player != nil {
		// A second Start without a Stop replaces the stream.
		t.player.Pause()
		_ = t.player.Close()
	}

	src := t.source(ringtoneURI)
	t.player = otoCtx.NewPlayer(src)
	t.player.Play()

	t.l.Info("ringer: started",
		slog.Int("alarm_id", alarmID), slog.String("ringtone_uri", ringtoneURI))
	return nil
}

func (t *Tone) Stop(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.player == nil {
		return nil
	}

	t.player.Pause()
	err := t.player.Close()
	t.player = nil

	t.l.Info("ringer: stopped")
	if err != nil {
		return fmt.Errorf("ringer - Stop - player.Close: %w", err)
	}
	return nil
}

func (t *Tone) source(ringtoneURI string) *toneReader {
	if ringtoneURI != "" {
		data, err := os.ReadFile(strings.TrimPrefix(ringtoneURI, "file://"))
		if err == nil {
			if pcm, err := pcmFromWAV(data, t.sampleRate); err == nil {
				return newLoopReader(pcm)
			} else {
				t.l.Warn("ringer: unusable ringtone, using built-in tone", logger.Err(err))
			}
		} else {
			t.l.Warn("ringer: unreadable ringtone, using built-in tone", logger.Err(err))
		}
	}
	return newSineReader(t.sampleRate, t.freq)
}
