package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailRaia/shortlink/internal/client"
	"github.com/MikhailRaia/shortlink/internal/model"
)

type mockShortener struct {
	mu          sync.Mutex
	calls       []model.ShortenRequest
	shortenFunc func(ctx context.Context, req model.ShortenRequest) (*model.ShortenResponse, error)
}

func (m *mockShortener) Shorten(ctx context.Context, req model.ShortenRequest) (*model.ShortenResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.shortenFunc == nil {
		return &model.ShortenResponse{ShortURL: "https://s.id/abc"}, nil
	}
	return m.shortenFunc(ctx, req)
}

func (m *mockShortener) Calls() []model.ShortenRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ShortenRequest(nil), m.calls...)
}

type mockClipboard struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (m *mockClipboard) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, text)
	return m.err
}

// manualTimers collects scheduled reverts so tests can fire them.
type manualTimers struct {
	mu    sync.Mutex
	delay []time.Duration
	funcs []func()
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = append(m.delay, d)
	m.funcs = append(m.funcs, f)
}

func (m *manualTimers) FireAll() {
	m.mu.Lock()
	funcs := m.funcs
	m.funcs = nil
	m.mu.Unlock()

	for _, f := range funcs {
		f()
	}
}

// recorder keeps every view published through OnChange.
type recorder struct {
	mu    sync.Mutex
	views []View
}

func (r *recorder) Record(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) Views() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View(nil), r.views...)
}

func TestController_Submit_EmptyURL(t *testing.T) {
	for _, url := range []string{"", " ", "\t  \n"} {
		shortener := &mockShortener{}
		c := NewController(shortener, &mockClipboard{})
		c.SetFields(Fields{URL: url, Alias: "x1", Expiry: "7"})

		err := c.Submit(context.Background())

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Empty(t, shortener.Calls())

		v := c.View()
		assert.Equal(t, Banner{Text: "Please enter a URL.", Visible: true}, v.Error)
		assert.Equal(t, Button{Label: "Shorten"}, v.Submit)
	}
}

func TestController_Submit_RequestBody(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{
			name:   "alias and expiry",
			fields: Fields{URL: "example.com", Alias: "x1", Expiry: "7"},
			want:   `{"url":"example.com","custom_code":"x1","expires_in_days":7}`,
		},
		{
			name:   "blank alias",
			fields: Fields{URL: "example.com", Alias: ""},
			want:   `{"url":"example.com"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shortener := &mockShortener{}
			c := NewController(shortener, &mockClipboard{})
			c.SetFields(tt.fields)

			require.NoError(t, c.Submit(context.Background()))

			calls := shortener.Calls()
			require.Len(t, calls, 1)
			body, err := jsonBody(&calls[0])
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, body)
			assert.NotContains(t, body, `"custom_code":""`)
		})
	}
}

func TestController_Submit_Success(t *testing.T) {
	shortener := &mockShortener{shortenFunc: func(context.Context, model.ShortenRequest) (*model.ShortenResponse, error) {
		return &model.ShortenResponse{ShortURL: "https://s.id/abc", Reused: true}, nil
	}}
	c := NewController(shortener, &mockClipboard{})
	c.SetFields(Fields{URL: "https://example.com"})

	require.NoError(t, c.Submit(context.Background()))

	v := c.View()
	assert.Equal(t, "https://s.id/abc", v.Result.Href)
	assert.Equal(t, "https://s.id/abc", v.Result.Text)
	assert.Equal(t, "Existing link returned", v.Result.Meta)
	assert.True(t, v.Result.Visible)
	assert.False(t, v.Error.Visible)
}

func TestController_Submit_ApplicationError(t *testing.T) {
	apiErr := &client.APIError{StatusCode: 409, Message: "alias taken"}
	shortener := &mockShortener{shortenFunc: func(context.Context, model.ShortenRequest) (*model.ShortenResponse, error) {
		return nil, apiErr
	}}
	c := NewController(shortener, &mockClipboard{})
	c.SetFields(Fields{URL: "https://example.com", Alias: "taken"})

	err := c.Submit(context.Background())
	assert.ErrorIs(t, err, apiErr)

	v := c.View()
	assert.Equal(t, "alias taken", v.Error.Text)
	assert.True(t, v.Error.Visible)
	assert.False(t, v.Result.Visible)
}

func TestController_Submit_NetworkFailure(t *testing.T) {
	shortener := &mockShortener{shortenFunc: func(context.Context, model.ShortenRequest) (*model.ShortenResponse, error) {
		return nil, &client.TransportError{Err: errors.New("dial tcp: connection refused")}
	}}
	c := NewController(shortener, &mockClipboard{})
	c.SetFields(Fields{URL: "https://example.com"})

	err := c.Submit(context.Background())

	var transportErr *client.TransportError
	assert.ErrorAs(t, err, &transportErr)

	v := c.View()
	assert.Equal(t, "Could not connect to the API.", v.Error.Text)
	assert.NotEqual(t, "Something went wrong.", v.Error.Text)
	assert.Equal(t, Button{Label: "Shorten"}, v.Submit)
}

func TestController_Submit_HidesPreviousOutcome(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	shortener := &mockShortener{}
	c := NewController(shortener, &mockClipboard{})
	c.SetFields(Fields{URL: "https://example.com"})
	require.NoError(t, c.Submit(context.Background()))
	require.True(t, c.View().Result.Visible)

	shortener.shortenFunc = func(context.Context, model.ShortenRequest) (*model.ShortenResponse, error) {
		close(started)
		<-release
		return nil, &client.APIError{StatusCode: 400}
	}

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()

	<-started
	v := c.View()
	assert.False(t, v.Result.Visible)
	assert.False(t, v.Error.Visible)

	close(release)
	<-done
	assert.Equal(t, "Something went wrong.", c.View().Error.Text)
}

func TestController_Submit_DisabledWhileInFlight(t *testing.T) {
	outcomes := []struct {
		name string
		resp *model.ShortenResponse
		err  error
	}{
		{name: "success", resp: &model.ShortenResponse{ShortURL: "https://s.id/abc"}},
		{name: "application error", err: &client.APIError{StatusCode: 400, Message: "bad"}},
		{name: "transport error", err: &client.TransportError{Err: errors.New("reset")}},
	}

	for _, tt := range outcomes {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			started := make(chan struct{})
			shortener := &mockShortener{shortenFunc: func(context.Context, model.ShortenRequest) (*model.ShortenResponse, error) {
				close(started)
				<-release
				return tt.resp, tt.err
			}}

			rec := &recorder{}
			c := NewController(shortener, &mockClipboard{}, WithOnChange(rec.Record))
			c.SetFields(Fields{URL: "https://example.com"})

			done := make(chan error, 1)
			go func() { done <- c.Submit(context.Background()) }()

			<-started
			assert.Equal(t, Button{Label: "Shortening...", Disabled: true}, c.View().Submit)
			assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)

			close(release)
			<-done

			assert.Equal(t, Button{Label: "Shorten"}, c.View().Submit)
			assert.Len(t, shortener.Calls(), 1)

			enables := 0
			wasDisabled := false
			for _, v := range rec.Views() {
				if wasDisabled && !v.Submit.Disabled {
					enables++
				}
				wasDisabled = v.Submit.Disabled
			}
			assert.Equal(t, 1, enables)
		})
	}
}

func TestController_Submit_RestoresOnPanic(t *testing.T) {
	shortener := &mockShortener{shortenFunc: func(context.Context, model.ShortenRequest) (*model.ShortenResponse, error) {
		panic("boom")
	}}
	c := NewController(shortener, &mockClipboard{})
	c.SetFields(Fields{URL: "https://example.com"})

	assert.PanicsWithValue(t, "boom", func() {
		_ = c.Submit(context.Background())
	})

	v := c.View()
	assert.Equal(t, Button{Label: "Shorten"}, v.Submit)
	assert.Equal(t, "Could not connect to the API.", v.Error.Text)
}

func TestController_Submit_PassesContext(t *testing.T) {
	shortener := &mockShortener{shortenFunc: func(ctx context.Context, _ model.ShortenRequest) (*model.ShortenResponse, error) {
		return nil, &client.TransportError{Err: ctx.Err()}
	}}
	c := NewController(shortener, &mockClipboard{})
	c.SetFields(Fields{URL: "https://example.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Submit(ctx), context.Canceled)
	assert.Equal(t, "Could not connect to the API.", c.View().Error.Text)
}

func showResult(t *testing.T, c *Controller) {
	t.Helper()
	c.SetFields(Fields{URL: "https://example.com"})
	require.NoError(t, c.Submit(context.Background()))
}

func TestController_Copy(t *testing.T) {
	timers := &manualTimers{}
	clip := &mockClipboard{}
	c := NewController(&mockShortener{}, clip, WithAfterFunc(timers.AfterFunc))
	showResult(t, c)

	require.NoError(t, c.Copy())

	assert.Equal(t, []string{"https://s.id/abc"}, clip.writes)
	assert.Equal(t, "Copied!", c.View().Copy.Label)
	assert.Equal(t, []time.Duration{2 * time.Second}, timers.delay)

	timers.FireAll()
	assert.Equal(t, "Copy", c.View().Copy.Label)
}

func TestController_Copy_Failure(t *testing.T) {
	timers := &manualTimers{}
	clipErr := errors.New("permission denied")
	c := NewController(&mockShortener{}, &mockClipboard{err: clipErr}, WithAfterFunc(timers.AfterFunc))
	showResult(t, c)

	err := c.Copy()

	var clipboardErr *ClipboardError
	require.ErrorAs(t, err, &clipboardErr)
	assert.ErrorIs(t, err, clipErr)
	assert.Equal(t, "Failed", c.View().Copy.Label)

	timers.FireAll()
	assert.Equal(t, "Copy", c.View().Copy.Label)
}

func TestController_Copy_Twice(t *testing.T) {
	timers := &manualTimers{}
	c := NewController(&mockShortener{}, &mockClipboard{}, WithAfterFunc(timers.AfterFunc))
	showResult(t, c)

	require.NoError(t, c.Copy())
	require.NoError(t, c.Copy())
	assert.Equal(t, "Copied!", c.View().Copy.Label)
	require.Len(t, timers.funcs, 2)

	timers.funcs[0]()
	assert.Equal(t, "Copy", c.View().Copy.Label)
	timers.funcs[1]()
	assert.Equal(t, "Copy", c.View().Copy.Label)
}

func TestController_Copy_TwiceWithRealTimers(t *testing.T) {
	c := NewController(&mockShortener{}, &mockClipboard{}, WithFeedbackWindow(20*time.Millisecond))
	showResult(t, c)

	require.NoError(t, c.Copy())
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, c.Copy())

	assert.Eventually(t, func() bool {
		return c.View().Copy.Label == LabelCopy
	}, time.Second, 5*time.Millisecond)

	// Let the second revert fire before the leak check.
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, LabelCopy, c.View().Copy.Label)
}

func TestController_Copy_NothingShown(t *testing.T) {
	clip := &mockClipboard{}
	c := NewController(&mockShortener{}, clip)

	assert.ErrorIs(t, c.Copy(), ErrNothingToCopy)
	assert.Empty(t, clip.writes)
	assert.Equal(t, "Copy", c.View().Copy.Label)
}

func TestController_OnChange(t *testing.T) {
	rec := &recorder{}
	c := NewController(&mockShortener{}, &mockClipboard{})
	c.OnChange(rec.Record)

	c.SetFields(Fields{URL: "https://example.com"})
	assert.Empty(t, rec.Views())

	require.NoError(t, c.Submit(context.Background()))

	views := rec.Views()
	require.Len(t, views, 2)
	assert.True(t, views[0].Submit.Disabled)
	assert.False(t, views[1].Submit.Disabled)
	assert.True(t, views[1].Result.Visible)
}
