// Package audio turns population events into short sound cues.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/gridworld/components"
)

const sampleRate = beep.SampleRate(44100)

// minGap is the shortest time between two cues of the same kind.
const minGap = 80 * time.Millisecond

// Cues plays a chirp for births and a buzz for deaths. All methods are
// no-ops until Initialize succeeds.
type Cues struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	initialized bool
	last        map[string]time.Time
	now         func() time.Time
}

// NewCues creates a cue player at volume in (0, 1].
func NewCues(volume float64) *Cues {
	return &Cues{
		mixer:  &beep.Mixer{},
		volume: volume,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// Initialize opens the speaker.
func (c *Cues) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Close stops all cues and releases the speaker.
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	c.initialized = false
}

// OnTick plays the cues for one tick of population changes.
func (c *Cues) OnTick(eco *components.EcoInfo) {
	if n := eco.NumBirths(); n > 0 {
		c.play("birth", BirthChirp(n, c.volume))
	}
	if n := eco.NumDeaths(); n > 0 {
		c.play("death", DeathBuzz(n, c.volume))
	}
}

// PlayExtinction plays a long falling tone.
func (c *Cues) PlayExtinction() {
	c.play("extinction", withVolume(newEnvelope(newSweep(440, 55, 1200*time.Millisecond, waveSine), 1200*time.Millisecond, 20*time.Millisecond, 600*time.Millisecond), c.volume))
}

func (c *Cues) play(kind string, s beep.Streamer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	now := c.now()
	if now.Sub(c.last[kind]) < minGap {
		return
	}
	c.last[kind] = now
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// BirthChirp is a short rising sine. More births raise the pitch.
func BirthChirp(births int, volume float64) beep.Streamer {
	const d = 90 * time.Millisecond
	base := 660 * math.Pow(2, math.Min(float64(births-1), 12)/12)
	return withVolume(newEnvelope(newSweep(base, base*1.5, d, waveSine), d, 5*time.Millisecond, 50*time.Millisecond), volume*0.6)
}

// DeathBuzz is a short low saw. More deaths lengthen it.
func DeathBuzz(deaths int, volume float64) beep.Streamer {
	d := time.Duration(min(deaths, 10))*15*time.Millisecond + 60*time.Millisecond
	return withVolume(newEnvelope(newSweep(110, 90, d, waveSaw), d, 5*time.Millisecond, d/2), volume*0.4)
}

type wave int

const (
	waveSine wave = iota
	waveSaw
)

// sweep is an oscillator gliding linearly from one frequency to another.
type sweep struct {
	from, to float64
	phase    float64
	total    int
	pos      int
	wave     wave
}

func newSweep(from, to float64, d time.Duration, w wave) *sweep {
	return &sweep{from: from, to: to, total: sampleRate.N(d), wave: w}
}

func (s *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if s.pos >= s.total {
			return i, i > 0
		}
		var v float64
		switch s.wave {
		case waveSine:
			v = math.Sin(2 * math.Pi * s.phase)
		case waveSaw:
			v = 2 * (s.phase - 0.5)
		}
		samples[i][0] = v
		samples[i][1] = v

		freq := s.from + (s.to-s.from)*float64(s.pos)/float64(s.total)
		s.phase += freq / float64(sampleRate)
		s.phase -= math.Floor(s.phase)
		s.pos++
	}
	return len(samples), true
}

func (s *sweep) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	s                      beep.Streamer
	pos                    int
	attack, release, total int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration) *envelope {
	return &envelope{
		s:       s,
		attack:  sampleRate.N(attack),
		release: sampleRate.N(release),
		total:   sampleRate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		if e.pos >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; e.release > 0 && left < e.release {
			vol = math.Min(vol, float64(left)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

// withVolume scales s linearly; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}
