package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/shortlink/internal/generator"
	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/storage"
)

const maxRetries = 5

var (
	// ErrCodeTaken is returned when a requested custom code is already used.
	ErrCodeTaken = errors.New("custom code is already taken")
	// ErrNotFound is returned when no link exists for a code.
	ErrNotFound = errors.New("link not found")
	// ErrExpired is returned when a link exists but is past its expiry.
	ErrExpired = errors.New("link has expired")
	// ErrCodeSpace is returned when no free code was found within maxRetries.
	ErrCodeSpace = errors.New("max retries exceeded: unable to generate unique code")
)

// ValidationError describes a request the service refuses to process.
// Its message is safe to show to API clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PurgeQueue receives codes of links found expired.
type PurgeQueue interface {
	Submit(code string) bool
}

// CodeGenerator produces candidate short codes.
type CodeGenerator func() (string, error)

// ShortenResult is the outcome of a successful Shorten call.
type ShortenResult struct {
	Code     string
	ShortURL string
	Reused   bool
}

type shortenInput struct {
	URL           string `validate:"required,max=2048"`
	CustomCode    string `validate:"omitempty,min=3,max=32,shortcode"`
	ExpiresInDays *int   `validate:"omitempty,min=1,max=3650"`
}

// URLService provides business logic for creating and resolving short URLs.
type URLService struct {
	storage  storage.URLStorage
	baseURL  string
	generate CodeGenerator
	now      func() time.Time
	purger   PurgeQueue
	validate *validator.Validate
}

// Option configures a URLService.
type Option func(*URLService)

// WithGenerator replaces the random code generator.
func WithGenerator(g CodeGenerator) Option {
	return func(s *URLService) { s.generate = g }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *URLService) { s.now = now }
}

// WithPurgeQueue sets where expired codes are reported.
func WithPurgeQueue(p PurgeQueue) Option {
	return func(s *URLService) { s.purger = p }
}

// NewURLService constructs a URLService with the given storage and base URL.
func NewURLService(store storage.URLStorage, baseURL string, opts ...Option) *URLService {
	v := validator.New()
	_ = v.RegisterValidation("shortcode", isShortCode)

	s := &URLService{
		storage: store,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		generate: func() (string, error) {
			return generator.GenerateCode(generator.DefaultCodeLength)
		},
		now:      time.Now,
		validate: v,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Shorten validates req and returns a short link for it. Without a custom
// code, a live link for the same URL is reused.
func (s *URLService) Shorten(ctx context.Context, req model.ShortenRequest) (*ShortenResult, error) {
	input := shortenInput{
		URL:        strings.TrimSpace(req.URL),
		CustomCode: strings.TrimSpace(req.CustomCode),
	}
	if req.ExpiresInDays != nil && req.ExpiresInDays.Valid {
		days := req.ExpiresInDays.Value
		input.ExpiresInDays = &days
	}

	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	now := s.now()

	if input.CustomCode == "" {
		existing, err := s.storage.FindByOriginalURL(ctx, input.URL, now)
		switch {
		case err == nil:
			return s.result(existing.Code, true), nil
		case !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("error looking up existing link: %w", err)
		}
	}

	record := model.URL{
		OriginalURL: input.URL,
		CreatedAt:   now,
	}
	if input.ExpiresInDays != nil {
		expiresAt := now.AddDate(0, 0, *input.ExpiresInDays)
		record.ExpiresAt = &expiresAt
	}

	if input.CustomCode != "" {
		record.Code = input.CustomCode
		if err := s.storage.Save(ctx, record); err != nil {
			if errors.Is(err, storage.ErrCodeExists) {
				return nil, ErrCodeTaken
			}
			return nil, fmt.Errorf("error saving link: %w", err)
		}
		return s.result(record.Code, false), nil
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("error generating code: %w", err)
		}

		record.Code = code
		err = s.storage.Save(ctx, record)
		if err == nil {
			return s.result(code, false), nil
		}
		if !errors.Is(err, storage.ErrCodeExists) {
			return nil, fmt.Errorf("error saving link: %w", err)
		}

		log.Debug().Str("code", code).Int("attempt", attempt).Msg("Short code collision, retrying")
	}

	return nil, ErrCodeSpace
}

// Resolve returns the original URL for code.
func (s *URLService) Resolve(ctx context.Context, code string) (string, error) {
	record, err := s.storage.Get(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("error getting link: %w", err)
	}

	if record.Expired(s.now()) {
		if s.purger != nil {
			s.purger.Submit(code)
		}
		return "", ErrExpired
	}

	return record.OriginalURL, nil
}

// Ping checks the storage connection.
func (s *URLService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func (s *URLService) result(code string, reused bool) *ShortenResult {
	shortURL, err := url.JoinPath(s.baseURL, code)
	if err != nil {
		shortURL = s.baseURL + "/" + code
	}

	return &ShortenResult{
		Code:     code,
		ShortURL: shortURL,
		Reused:   reused,
	}
}

func (s *URLService) validateInput(input shortenInput) error {
	if input.URL == "" {
		return &ValidationError{Message: "Missing 'url' field"}
	}

	if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
		return &ValidationError{Message: "URL must start with http:// or https://"}
	}

	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	switch fieldErrs[0].Field() {
	case "URL":
		return &ValidationError{Message: "URL must not exceed 2048 characters"}
	case "CustomCode":
		return &ValidationError{Message: "custom_code must be 3-32 characters of letters, digits, '-' or '_'"}
	case "ExpiresInDays":
		return &ValidationError{Message: "expires_in_days must be between 1 and 3650"}
	default:
		return &ValidationError{Message: err.Error()}
	}
}

func isShortCode(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
