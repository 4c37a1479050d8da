package form

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/shortlink/internal/model"
)

// Shortener issues the shorten call.
type Shortener interface {
	Shorten(ctx context.Context, req model.ShortenRequest) (*model.ShortenResponse, error)
}

// Clipboard receives copied short links.
type Clipboard interface {
	WriteText(text string) error
}

// Controller owns the form state and runs submissions and copies against
// collaborators bound at construction. It is safe for concurrent use; the
// disabled submit button is the only guard against overlapping submissions.
type Controller struct {
	shortener Shortener
	clipboard Clipboard

	afterFunc      func(d time.Duration, f func())
	feedbackWindow time.Duration

	mu       sync.Mutex
	view     View
	onChange func(View)
}

type Option func(*Controller)

// WithAfterFunc replaces the timer used to revert the copy button.
func WithAfterFunc(afterFunc func(d time.Duration, f func())) Option {
	return func(c *Controller) { c.afterFunc = afterFunc }
}

// WithFeedbackWindow overrides FeedbackWindow.
func WithFeedbackWindow(d time.Duration) Option {
	return func(c *Controller) { c.feedbackWindow = d }
}

// WithOnChange registers fn to receive every new view.
func WithOnChange(fn func(View)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func NewController(shortener Shortener, clipboard Clipboard, opts ...Option) *Controller {
	c := &Controller{
		shortener: shortener,
		clipboard: clipboard,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		feedbackWindow: FeedbackWindow,
		view:           InitialView(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// OnChange replaces the change listener. fn is called outside the
// controller's lock and may call View.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetFields stores the current input text. It does not notify listeners.
func (c *Controller) SetFields(f Fields) {
	c.mu.Lock()
	c.view.Fields = f
	c.mu.Unlock()
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Submit runs one shorten cycle with the current fields. It returns
// *ValidationError for an empty URL, ErrBusy while another call is in
// flight, or the error of the shorten call. The outcome is always rendered
// into the view, and the submit button is restored on every exit path.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.view.Submit.Disabled {
		c.mu.Unlock()
		return ErrBusy
	}

	next, req, err := Begin(c.view)
	c.view = next
	c.mu.Unlock()
	c.notify()

	if err != nil {
		return err
	}

	var resp *model.ShortenResponse
	var callErr error

	defer func() {
		c.update(func(v View) View {
			return Complete(v, resp, callErr)
		})
	}()

	resp, callErr = c.shortener.Shorten(ctx, *req)
	if callErr != nil {
		log.Debug().Err(callErr).Str("url", req.URL).Msg("Shorten failed")
	}

	return callErr
}

// Copy writes the displayed short link to the clipboard. The copy button
// shows the outcome for the feedback window and then reverts; a newer copy
// does not cancel an older revert.
func (c *Controller) Copy() error {
	v := c.View()
	if !v.Result.Visible || v.Result.Text == "" {
		return ErrNothingToCopy
	}

	err := c.clipboard.WriteText(v.Result.Text)
	c.update(func(v View) View {
		return CopyFeedback(v, err)
	})

	c.afterFunc(c.feedbackWindow, func() {
		c.update(ResetCopy)
	})

	if err != nil {
		log.Debug().Err(err).Msg("Clipboard write failed")
		return &ClipboardError{Err: err}
	}
	return nil
}

func (c *Controller) update(fn func(View) View) {
	c.mu.Lock()
	c.view = fn(c.view)
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn, v := c.onChange, c.view
	c.mu.Unlock()

	if fn != nil {
		fn(v)
	}
}
