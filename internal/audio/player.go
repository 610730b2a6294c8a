// Package audio implements the alarm sound engine on top of oto.
package audio

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// Compile-time interface check.
var _ domain.AudioPlayer = (*Player)(nil)

// The oto context can only be created once per process, with one
// format. The first loaded file decides it; later files with other
// formats play slightly off-speed rather than failing.
var (
	otoCtx  *oto.Context
	otoOnce sync.Once
)

func audioContext(f wavFormat, log *logger.Logger) *oto.Context {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   f.SampleRate,
			ChannelCount: f.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Error("audio context init failed: %v", err)
			return
		}
		<-readyChan
		otoCtx = ctx
		log.Debug("audio context initialized (rate=%d, channels=%d)", f.SampleRate, f.Channels)
	})
	return otoCtx
}

// Player plays WAV files through the system audio device. It satisfies
// domain.AudioPlayer; a ring controller drives it from its own
// goroutine. Safe for concurrent use.
type Player struct {
	log *logger.Logger

	mu     sync.Mutex
	format wavFormat
	pcm    []byte
	volume float64
	active *oto.Player
	stopCh chan struct{}
}

// NewPlayer creates an idle player. The audio device is only touched
// on the first Play.
func NewPlayer(log *logger.Logger) *Player {
	return &Player{log: log, volume: 1.0}
}

// Load reads and parses a WAV file, replacing any previously loaded clip.
func (p *Player) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading sound file: %w", err)
	}
	format, pcm, err := parseWAV(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	p.mu.Lock()
	p.format = format
	p.pcm = pcm
	p.mu.Unlock()

	p.log.Debug("loaded %s (%d bytes PCM, rate=%d)", path, len(pcm), format.SampleRate)
	return nil
}

// Play starts playback of the loaded clip on a background goroutine.
// With loop set, the clip repeats until Stop. Calling Play while
// already playing restarts playback.
func (p *Player) Play(loop bool) {
	p.mu.Lock()
	if p.pcm == nil {
		p.mu.Unlock()
		p.log.Warn("play requested with no clip loaded")
		return
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	stopCh := make(chan struct{})
	p.stopCh = stopCh
	pcm := p.pcm
	format := p.format
	p.mu.Unlock()

	go p.playLoop(pcm, format, loop, stopCh)
}

// playLoop creates an oto player per pass and polls it to completion,
// checking the stop channel at sub-second intervals.
func (p *Player) playLoop(pcm []byte, format wavFormat, loop bool, stopCh chan struct{}) {
	ctx := audioContext(format, p.log)
	if ctx == nil {
		p.log.Error("no audio context, playback skipped")
		return
	}

	for {
		player := ctx.NewPlayer(bytes.NewReader(pcm))

		p.mu.Lock()
		p.active = player
		player.SetVolume(p.volume)
		p.mu.Unlock()

		player.Play()

		for player.IsPlaying() {
			select {
			case <-stopCh:
				player.Pause()
				player.Close()
				p.clearActive(player)
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		player.Close()
		p.clearActive(player)

		if !loop {
			return
		}
		select {
		case <-stopCh:
			return
		default:
		}
	}
}

func (p *Player) clearActive(player *oto.Player) {
	p.mu.Lock()
	if p.active == player {
		p.active = nil
	}
	p.mu.Unlock()
}

// SetVolume sets the playback volume, applied immediately when a clip
// is playing and remembered for the next one.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	p.volume = v
	if p.active != nil {
		p.active.SetVolume(v)
	}
	p.mu.Unlock()
}

// IsPlaying reports whether a clip is audibly playing right now.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil && p.active.IsPlaying()
}

// Stop interrupts playback. Safe to call concurrently and when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio playback interrupted")
	}
}
