package playback

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog/log"

	"github.com/muezzin-labs/muezzin/internal/model"
	"github.com/muezzin-labs/muezzin/internal/notify"
)

// trackFiles maps custom adhan sounds to their bundled mp3 assets.
var trackFiles = map[model.AdhanSound]string{
	model.SoundMadina:  "adhan_madina.mp3",
	model.SoundMakkah:  "adhan_makkah.mp3",
	model.SoundNureyn:  "adhan_nureyn_mohammad.mp3",
	model.SoundMishary: "adhan_mishary.mp3",
}

// TrackFile resolves a sound to its asset filename.
func TrackFile(sound model.AdhanSound) (string, bool) {
	f, ok := trackFiles[sound]
	return f, ok
}

// ShouldPlay reports whether a delivered command requires local audio.
// Reminders and the none/silent/default sounds are handled entirely by the
// device notification chime.
func ShouldPlay(cmd notify.AdhanCommand) bool {
	return cmd.Kind == model.KindMain && cmd.Sound.IsCustomTrack()
}

// Player plays adhan tracks through the speaker. It is a single-slot
// resource: at most one adhan plays at a time, and starting a new one stops
// and releases the current one first.
type Player struct {
	mu         sync.Mutex
	soundsDir  string
	sampleRate beep.SampleRate
	speakerUp  bool
	current    beep.StreamSeekCloser
}

func NewPlayer(soundsDir string) *Player {
	return &Player{
		soundsDir:  soundsDir,
		sampleRate: beep.SampleRate(44100),
	}
}

// Play starts the given adhan track, replacing any playback in progress.
// The underlying stream is released when playback finishes naturally or is
// superseded.
func (p *Player) Play(sound model.AdhanSound) error {
	name, ok := TrackFile(sound)
	if !ok {
		return fmt.Errorf("no audio asset for sound %q", sound)
	}

	f, err := os.Open(filepath.Join(p.soundsDir, name))
	if err != nil {
		return fmt.Errorf("failed to open adhan asset: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to decode adhan asset: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.speakerUp {
		if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		p.speakerUp = true
	}

	p.stopLocked()

	var stream beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		stream = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	p.current = streamer
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		p.release(streamer)
	})))
	return nil
}

// Stop halts and releases any playback in progress.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	speaker.Clear()
	p.current.Close()
	p.current = nil
}

// release closes the streamer after natural completion, unless a newer
// playback already took the slot.
func (p *Player) release(st beep.StreamSeekCloser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == st {
		p.current.Close()
		p.current = nil
	}
}

// HandleDelivery consumes one raw MQTT payload. Every failure path is logged
// and swallowed: a malformed or unplayable command must never take the agent
// down.
func (p *Player) HandleDelivery(payload []byte) {
	var cmd notify.AdhanCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		log.Error().Err(err).Msg("ignoring malformed adhan command")
		return
	}

	if !ShouldPlay(cmd) {
		log.Debug().
			Str("prayer", string(cmd.Prayer)).
			Str("kind", string(cmd.Kind)).
			Str("sound", string(cmd.Sound)).
			Msg("command needs no local audio")
		return
	}

	if err := p.Play(cmd.Sound); err != nil {
		log.Error().Err(err).
			Str("prayer", string(cmd.Prayer)).
			Str("sound", string(cmd.Sound)).
			Msg("adhan playback failed")
		return
	}

	log.Info().Str("prayer", string(cmd.Prayer)).Str("sound", string(cmd.Sound)).Msg("playing adhan")
}
