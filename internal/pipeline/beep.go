package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/chime-audio/chime/internal/errors"
)

const tickInterval = 250 * time.Millisecond

// BeepEngine renders audio with the beep speaker. Streams are fetched
// fully before decoding; fetch progress is reported as buffering events.
type BeepEngine struct {
	mu sync.Mutex

	httpClient  *http.Client
	events      chan Event
	sampleRate  beep.SampleRate
	initialized bool
	closed      bool

	// Per-load state. gen guards against events from a replaced stream.
	gen      int
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	tickDone chan struct{}
}

// NewBeepEngine creates an engine rendering through the default speaker
// at the given output rate. Zero or negative uses 44.1kHz; streams at
// other rates are resampled on load.
func NewBeepEngine(sampleRate int) *BeepEngine {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &BeepEngine{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		events:     make(chan Event, 64),
		sampleRate: beep.SampleRate(sampleRate),
	}
}

// Events returns the engine's event stream.
func (e *BeepEngine) Events() <-chan Event { return e.events }

// Load fetches and decodes streamURL, replacing any current stream. The
// new stream starts paused; call Play to start output.
func (e *BeepEngine) Load(streamURL string) error {
	data, contentType, err := e.fetch(streamURL)
	if err != nil {
		return errors.Pipeline(errors.PipelineNetwork, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	if isFLAC(streamURL, contentType, data) {
		streamer, format, err = flac.Decode(nopCloser{bytes.NewReader(data)})
	} else {
		streamer, format, err = mp3.Decode(nopCloser{bytes.NewReader(data)})
	}
	if err != nil {
		return errors.Pipeline(errors.PipelineDecode, fmt.Errorf("decode %s: %w", streamURL, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		streamer.Close()
		return errors.Pipeline(errors.PipelineInternal, fmt.Errorf("engine closed"))
	}

	e.stopLocked()

	if !e.initialized {
		if err := speaker.Init(e.sampleRate, e.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return errors.Pipeline(errors.PipelineInternal, fmt.Errorf("speaker init: %w", err))
		}
		e.initialized = true
	}

	e.gen++
	gen := e.gen
	e.streamer = streamer
	e.format = format

	resampled := beep.Resample(4, format.SampleRate, e.sampleRate, streamer)
	e.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2}

	// The callback fires from the speaker's mixer goroutine with the
	// speaker lock held; hop to a fresh goroutine before touching e.mu.
	speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
		go func() {
			e.mu.Lock()
			current := gen == e.gen
			e.mu.Unlock()
			if current {
				e.emit(Event{Kind: EventEndOfStream})
			}
		}()
	})))

	e.emit(Event{Kind: EventDurationKnown, Duration: format.SampleRate.D(streamer.Len())})
	e.emit(Event{
		Kind:     EventAudioQuality,
		BitDepth: format.Precision * 8,
		Rate:     int(format.SampleRate),
	})

	e.tickDone = make(chan struct{})
	go e.tickLoop(gen, e.tickDone)

	return nil
}

// fetch downloads the stream, reporting progress as buffering events.
func (e *BeepEngine) fetch(streamURL string) ([]byte, string, error) {
	resp, err := e.httpClient.Get(streamURL)
	if err != nil {
		return nil, "", fmt.Errorf("fetch stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch stream: unexpected status %d", resp.StatusCode)
	}

	total := resp.ContentLength
	var buf bytes.Buffer
	chunk := make([]byte, 64*1024)
	lastPercent := -1
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if total > 0 {
				percent := int(buf.Len() * 100 / int(total))
				if percent != lastPercent && percent < 100 {
					lastPercent = percent
					e.emit(Event{Kind: EventBuffering, Percent: percent})
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("read stream: %w", err)
		}
	}
	e.emit(Event{Kind: EventBuffering, Percent: 100})

	return buf.Bytes(), resp.Header.Get("Content-Type"), nil
}

// Play resumes output.
func (e *BeepEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return errors.Pipeline(errors.PipelineInternal, fmt.Errorf("no stream loaded"))
	}
	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause pauses output.
func (e *BeepEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return errors.Pipeline(errors.PipelineInternal, fmt.Errorf("no stream loaded"))
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

// Stop halts output and releases the current stream.
func (e *BeepEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	return nil
}

// Seek moves the current stream to pos.
func (e *BeepEngine) Seek(pos time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return errors.Pipeline(errors.PipelineInternal, fmt.Errorf("no stream loaded"))
	}
	speaker.Lock()
	defer speaker.Unlock()
	if err := e.streamer.Seek(e.format.SampleRate.N(pos)); err != nil {
		return errors.Pipeline(errors.PipelineDecode, fmt.Errorf("seek: %w", err))
	}
	return nil
}

// SetVolume sets output volume, 0-100.
func (e *BeepEngine) SetVolume(level int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.volume == nil {
		return nil
	}
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	speaker.Lock()
	e.volume.Silent = level == 0
	// 100 maps to unity gain, each 25 points below halves the output.
	e.volume.Volume = float64(level-100) / 25
	speaker.Unlock()
	return nil
}

// QueryPosition reports the authoritative playback position.
func (e *BeepEngine) QueryPosition() (time.Duration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.streamer == nil {
		return 0, false
	}
	speaker.Lock()
	pos := e.streamer.Position()
	speaker.Unlock()
	return e.format.SampleRate.D(pos), true
}

// Close stops output and closes the event stream.
func (e *BeepEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.stopLocked()
	e.closed = true
	close(e.events)
	return nil
}

// stopLocked releases the current stream. Caller holds e.mu.
func (e *BeepEngine) stopLocked() {
	if e.tickDone != nil {
		close(e.tickDone)
		e.tickDone = nil
	}
	if e.ctrl != nil {
		speaker.Lock()
		e.ctrl.Paused = true
		speaker.Unlock()
	}
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.gen++
}

// tickLoop emits position ticks for one loaded stream until it is
// replaced or the engine closes.
func (e *BeepEngine) tickLoop(gen int, done <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		if e.closed || gen != e.gen || e.streamer == nil {
			e.mu.Unlock()
			return
		}
		speaker.Lock()
		paused := e.ctrl.Paused
		pos := e.streamer.Position()
		speaker.Unlock()
		format := e.format
		e.mu.Unlock()

		if !paused {
			e.emit(Event{Kind: EventPositionTick, Position: format.SampleRate.D(pos)})
		}
	}
}

// emit sends an event without ever blocking the engine; ticks are
// droppable because each carries full state.
func (e *BeepEngine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

func isFLAC(url, contentType string, data []byte) bool {
	if strings.Contains(contentType, "flac") {
		return true
	}
	if strings.Contains(strings.ToLower(url), ".flac") {
		return true
	}
	return len(data) >= 4 && string(data[:4]) == "fLaC"
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

var _ Engine = (*BeepEngine)(nil)
