package sound

import (
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	log "github.com/sirupsen/logrus"
)

const (
	sampleRate  = beep.SampleRate(44100)
	playTimeout = 10 * time.Millisecond
)

// Player plays wav files on a background goroutine, one at a time; a new
// sound cuts off the previous one.
type Player struct {
	sounds chan string
	done   chan struct{}
}

func NewPlayer() *Player {
	p := &Player{
		sounds: make(chan string),
		done:   make(chan struct{}),
	}
	go p.loop()
	return p
}

func (p *Player) loop() {
	defer close(p.done)
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Sound player failed: %v", r)
		}
		for s := range p.sounds {
			log.Warnf("Unable to play %s", s)
		}
	}()
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/5)); err != nil {
		log.Errorf("Failed to open speaker: %v", err)
		return
	}

	var (
		ctrl   *beep.Ctrl
		stream beep.StreamSeekCloser
	)
	stop := func() {
		if ctrl != nil {
			speaker.Lock()
			ctrl.Paused = true
			ctrl.Streamer = nil
			speaker.Unlock()
			ctrl = nil
		}
		if stream != nil {
			_ = stream.Close()
			stream = nil
		}
	}
	defer stop()

	for path := range p.sounds {
		stop()
		f, err := os.Open(path)
		if err != nil {
			log.Warnf("Failed to open sound: %v", err)
			continue
		}
		stream, _, err = wav.Decode(f)
		if err != nil {
			log.Warnf("Failed to decode sound %s: %v", path, err)
			_ = f.Close()
			stream = nil
			continue
		}
		ctrl = &beep.Ctrl{Streamer: stream}
		speaker.Play(ctrl)
	}
}

// Play queues a sound without blocking the caller for more than a few
// milliseconds.
func (p *Player) Play(path string) {
	select {
	case p.sounds <- path:
	case <-time.After(playTimeout):
		log.Warnf("Timed out trying to play sound: %s", path)
	}
}

// Close stops playback and waits for the player to exit.
func (p *Player) Close() {
	close(p.sounds)
	<-p.done
}
