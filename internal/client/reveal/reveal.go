package client_reveal

import (
	"context"
	"slices"
	"sync"
	"time"

	client_state "github.com/humanbelnik/penaltydraw/internal/client/state"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

const DefaultSlideInterval = 2 * time.Second

// Presenter plays one draw's media and reports when it has been fully shown.
type Presenter interface {
	Run(ctx context.Context) error
	Done() bool
}

// For picks the presenter matching the media a draw produced.
func For(state client_state.State, onComplete func(), opts ...CarouselOption) Presenter {
	if state.VideoURL != "" {
		return NewVideo(state.VideoURL, onComplete)
	}
	return NewCarousel(state.MemeURLs, onComplete, opts...)
}

// completion calls fn at most once.
type completion struct {
	once sync.Once
	done chan struct{}
	fn   func()
}

func newCompletion(fn func()) *completion {
	if fn == nil {
		fn = func() {}
	}
	return &completion{done: make(chan struct{}), fn: fn}
}

func (c *completion) complete() {
	c.once.Do(func() {
		close(c.done)
		c.fn()
	})
}

func (c *completion) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Carousel shows meme slides one by one. Autoplay moves forward every interval
// until the user navigates by hand; leaving the last slide completes the reveal.
type Carousel struct {
	mu       sync.Mutex
	slides   []string
	current  int
	autoplay bool
	interval time.Duration
	finished *completion
}

type CarouselOption func(*Carousel)

func WithInterval(d time.Duration) CarouselOption {
	return func(c *Carousel) {
		c.interval = d
	}
}

func NewCarousel(slides []string, onComplete func(), opts ...CarouselOption) *Carousel {
	c := &Carousel{
		slides:   slides,
		autoplay: true,
		interval: DefaultSlideInterval,
		finished: newCompletion(onComplete),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Current returns the index and url of the visible slide.
func (c *Carousel) Current() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.slides) == 0 {
		return 0, ""
	}
	return c.current, c.slides[c.current]
}

func (c *Carousel) Slides() []string {
	return slices.Clone(c.slides)
}

func (c *Carousel) Len() int {
	return len(c.slides)
}

func (c *Carousel) Done() bool {
	return c.finished.isDone()
}

// Advance is one autoplay step. It does nothing once the user took over.
func (c *Carousel) Advance() {
	c.mu.Lock()
	if !c.autoplay {
		c.mu.Unlock()
		return
	}
	last := c.forward()
	c.mu.Unlock()
	if last {
		c.finished.complete()
	}
}

func (c *Carousel) Next() {
	c.mu.Lock()
	c.autoplay = false
	last := c.forward()
	c.mu.Unlock()
	if last {
		c.finished.complete()
	}
}

func (c *Carousel) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoplay = false
	if c.current > 0 {
		c.current--
	}
}

// Jump shows slide i. Jumping to the last slide counts as having seen them all.
func (c *Carousel) Jump(i int) {
	c.mu.Lock()
	c.autoplay = false
	if i < 0 || i >= len(c.slides) {
		c.mu.Unlock()
		return
	}
	c.current = i
	last := i == len(c.slides)-1
	c.mu.Unlock()
	if last {
		c.finished.complete()
	}
}

// forward reports whether the carousel was already on its last slide.
func (c *Carousel) forward() bool {
	if c.current >= len(c.slides)-1 {
		return true
	}
	c.current++
	return false
}

// Run autoplays until the reveal completes or ctx is done.
func (c *Carousel) Run(ctx context.Context) error {
	if len(c.slides) == 0 {
		c.finished.complete()
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.finished.done:
			return nil
		case <-ticker.C:
			c.Advance()
		}
	}
}

// Video plays the generated clip. Placeholder or missing videos are shown as
// a still image and count as consumed at once.
type Video struct {
	url      string
	finished *completion
}

func NewVideo(url string, onComplete func()) *Video {
	return &Video{url: url, finished: newCompletion(onComplete)}
}

func (v *Video) URL() string {
	return v.url
}

func (v *Video) IsStill() bool {
	return v.url == "" || model.IsPlaceholder(v.url)
}

func (v *Video) Done() bool {
	return v.finished.isDone()
}

// Ended is called when playback reaches the end.
func (v *Video) Ended() {
	v.finished.complete()
}

// Run waits for playback to end or ctx to be done.
func (v *Video) Run(ctx context.Context) error {
	if v.IsStill() {
		v.finished.complete()
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-v.finished.done:
		return nil
	}
}

// Director runs one presenter per draw. It starts a presenter when the room
// enters REVEALING and cancels it once the room leaves that phase or a
// different draw replaces it, so a stale reveal never marks a newer draw as
// consumed.
type Director struct {
	mu       sync.Mutex
	cancel   context.CancelFunc
	consumed func()
	show     func(ctx context.Context, p Presenter)
	opts     []CarouselOption
}

type DirectorOption func(*Director)

// WithShow is called with each new presenter before it runs, on the presenter's goroutine.
func WithShow(fn func(ctx context.Context, p Presenter)) DirectorOption {
	return func(d *Director) {
		d.show = fn
	}
}

func WithCarouselOptions(opts ...CarouselOption) DirectorOption {
	return func(d *Director) {
		d.opts = append(d.opts, opts...)
	}
}

func NewDirector(consumed func(), opts ...DirectorOption) *Director {
	d := &Director{
		consumed: consumed,
		show:     func(context.Context, Presenter) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnChange has the Store listener signature.
func (d *Director) OnChange(prev, next client_state.State) {
	revealing := next.Phase() == model.PhaseRevealing
	wasRevealing := prev.Phase() == model.PhaseRevealing

	switch {
	case revealing && (!wasRevealing || !sameDraw(prev, next)):
		d.start(next)
	case !revealing && wasRevealing:
		d.Stop()
	}
}

func (d *Director) start(state client_state.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	presenter := For(state, func() {
		if ctx.Err() == nil {
			d.consumed()
		}
	}, d.opts...)

	go func() {
		d.show(ctx, presenter)
		_ = presenter.Run(ctx)
	}()
}

// Stop cancels the running presenter, if any.
func (d *Director) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func sameDraw(a, b client_state.State) bool {
	return a.Loser == b.Loser && a.VideoURL == b.VideoURL && slices.Equal(a.MemeURLs, b.MemeURLs)
}
