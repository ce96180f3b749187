package narration

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Kind string

const (
	KindNarration  Kind = "narration"
	KindDialogue   Kind = "dialogue"
	KindSystem     Kind = "system_event"
	KindChoice     Kind = "player_choice"
	KindExtraction Kind = "extraction_reason"
	KindProgress   Kind = "progress"
)

// DefaultDelay paces drop narration between reveals.
const DefaultDelay = 3 * time.Second

// Beat is one timed reveal. Delay is how long to wait before showing it.
type Beat struct {
	Kind     Kind          `json:"kind"`
	Speaker  string        `json:"speaker,omitempty"`
	Text     string        `json:"text"`
	Delay    time.Duration `json:"-"`
	Progress float64       `json:"progress,omitempty"`
}

func (b Beat) MarshalJSON() ([]byte, error) {
	type plain Beat
	return json.Marshal(struct {
		plain
		DelayMS int64 `json:"delay_ms"`
	}{plain: plain(b), DelayMS: b.Delay.Milliseconds()})
}

func Narrate(text string) Beat { return Beat{Kind: KindNarration, Text: text, Delay: DefaultDelay} }
func System(text string) Beat  { return Beat{Kind: KindSystem, Text: text, Delay: DefaultDelay} }
func Choice(text string) Beat  { return Beat{Kind: KindChoice, Text: text} }

func Say(speaker, text string) Beat {
	return Beat{Kind: KindDialogue, Speaker: speaker, Text: text, Delay: DefaultDelay}
}

// Playback walks a resolved beat sequence. All outcomes are decided before
// the sequence is built, so skipping only changes what is still to be shown.
type Playback struct {
	mu    sync.Mutex
	beats []Beat
	pos   int
}

func NewPlayback(beats []Beat) *Playback {
	return &Playback{beats: append([]Beat(nil), beats...)}
}

// Next returns the next beat, false when drained.
func (p *Playback) Next() (Beat, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos >= len(p.beats) {
		return Beat{}, false
	}
	b := p.beats[p.pos]
	p.pos++
	return b, true
}

// Skip drains every remaining beat and returns them with zero delay. Calling
// it again returns nothing.
func (p *Playback) Skip() []Beat {
	p.mu.Lock()
	defer p.mu.Unlock()
	rest := make([]Beat, 0, len(p.beats)-p.pos)
	for _, b := range p.beats[p.pos:] {
		b.Delay = 0
		rest = append(rest, b)
	}
	p.pos = len(p.beats)
	return rest
}

func (p *Playback) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.beats) - p.pos
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func RealSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Play emits beats in order, waiting each beat's delay first. A cancelled
// context stops the waiting but leaves the remaining beats for Skip.
func (p *Playback) Play(ctx context.Context, sleep Sleeper, emit func(Beat)) error {
	if sleep == nil {
		sleep = RealSleep
	}
	for {
		b, ok := p.Next()
		if !ok {
			return nil
		}
		if err := sleep(ctx, b.Delay); err != nil {
			p.mu.Lock()
			p.pos--
			p.mu.Unlock()
			return err
		}
		emit(b)
	}
}
