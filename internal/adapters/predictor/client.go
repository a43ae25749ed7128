// Package predictor is the HTTP client for the external cardiovascular
// prediction service.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/cardiocare/internal/domain/intake"
	"github.com/okian/cardiocare/pkg/logger"
)

// Default client configuration constants.
const (
	DefaultURL        = "http://127.0.0.1:5000/predict"
	defaultCountry    = "India"
	defaultOccupation = "Not specified"
	dateLayout        = "2006-01-02"
	maxBodyBytes      = 1 << 20
)

// Request is the wire body of POST /predict.
type Request struct {
	Date        string `json:"date"`
	Country     string `json:"country"`
	ID          int64  `json:"id"`
	Active      int    `json:"active"`
	Age         int    `json:"age"`
	Alco        int    `json:"alco"`
	APHi        int    `json:"ap_hi"`
	APLo        int    `json:"ap_lo"`
	Cholesterol int    `json:"cholesterol"`
	Gender      int    `json:"gender"`
	Gluc        int    `json:"gluc"`
	Height      int    `json:"height"`
	Occupation  string `json:"occupation"`
	Smoke       int    `json:"smoke"`
	Weight      int    `json:"weight"`
}

// response covers both the success and the error shape of the service.
type response struct {
	Prediction *int   `json:"prediction"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// Option configures a Client.
type Option func(*Client)

// WithURL sets the prediction endpoint.
func WithURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.url = url
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds a single call. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDefaultCountry sets the country sent when the form left it empty.
func WithDefaultCountry(country string) Option {
	return func(c *Client) {
		if country != "" {
			c.defaultCountry = country
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client calls the prediction service once per Predict, without retries.
// It implements intake.Predictor.
type Client struct {
	url            string
	http           *http.Client
	timeout        time.Duration
	defaultCountry string
	log            logger.Logger
}

var _ intake.Predictor = (*Client)(nil)

// New creates a client.
func New(opts ...Option) *Client {
	c := &Client{
		url:            DefaultURL,
		http:           &http.Client{},
		defaultCountry: defaultCountry,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("predictor")
	}
	return c
}

// URL returns the configured endpoint.
func (c *Client) URL() string { return c.url }

// BuildRequest translates a payload into the wire body. Numbers are
// truncated to integers and empty free-text fields get their defaults.
func (c *Client) BuildRequest(p intake.Payload) (Request, error) {
	if missing := p.Metrics.Missing(); len(missing) > 0 {
		return Request{}, &intake.ValidationError{Missing: missing, Reason: "please fill in all required fields"}
	}
	num := func(f intake.Field) int {
		v, _ := p.Metrics.Int(f)
		return v
	}

	country := strings.TrimSpace(p.Metrics.Country())
	if country == "" {
		country = c.defaultCountry
	}
	occupation := strings.TrimSpace(p.Metrics.Occupation())
	if occupation == "" {
		occupation = defaultOccupation
	}

	return Request{
		Date:        p.SubmittedAt.UTC().Format(dateLayout),
		Country:     country,
		ID:          p.ID,
		Active:      num(intake.FieldActive),
		Age:         num(intake.FieldAge),
		Alco:        num(intake.FieldAlcohol),
		APHi:        num(intake.FieldSystolic),
		APLo:        num(intake.FieldDiastolic),
		Cholesterol: num(intake.FieldCholesterol),
		Gender:      num(intake.FieldGender),
		Gluc:        num(intake.FieldGlucose),
		Height:      num(intake.FieldHeight),
		Occupation:  occupation,
		Smoke:       num(intake.FieldSmoke),
		Weight:      num(intake.FieldWeight),
	}, nil
}

// Predict posts p and returns the service's prediction. Every failure is a
// *intake.PredictionError with a user-facing reason.
func (c *Client) Predict(ctx context.Context, p intake.Payload) (intake.Prediction, error) {
	req, err := c.BuildRequest(p)
	if err != nil {
		return intake.Prediction{}, intake.AsPredictionError(err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return intake.Prediction{}, transportErr(fmt.Errorf("marshal request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return intake.Prediction{}, transportErr(fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn(ctx, "prediction request failed", logger.String("url", c.url), logger.Error(err))
		return intake.Prediction{}, transportErr(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return intake.Prediction{}, transportErr(fmt.Errorf("read response: %w", err))
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn(ctx, "prediction service returned an error status",
			logger.Int("status", resp.StatusCode),
			logger.String("error", out.Error),
		)
		return intake.Prediction{}, serviceErr(out.Error, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode))
	}
	if decodeErr != nil {
		return intake.Prediction{}, serviceErr("", fmt.Errorf("%w: %w", ErrMalformedResponse, decodeErr))
	}
	if out.Error != "" {
		return intake.Prediction{}, serviceErr(out.Error, ErrServiceReported)
	}
	if out.Prediction == nil || (*out.Prediction != 0 && *out.Prediction != 1) {
		return intake.Prediction{}, serviceErr("", fmt.Errorf("%w: missing or invalid prediction flag", ErrMalformedResponse))
	}

	c.log.Debug(ctx, "prediction received", logger.Int("prediction", *out.Prediction), logger.Int64("id", p.ID))
	return intake.Prediction{Flag: *out.Prediction, Message: out.Message}, nil
}

func transportErr(err error) *intake.PredictionError {
	return &intake.PredictionError{Kind: intake.KindTransport, Reason: intake.GenericFailure, Err: err}
}

func serviceErr(reason string, err error) *intake.PredictionError {
	if reason == "" {
		reason = intake.GenericFailure
	}
	return &intake.PredictionError{Kind: intake.KindService, Reason: reason, Err: err}
}

// IsTransport reports whether err is a transport-level prediction failure.
func IsTransport(err error) bool {
	var pe *intake.PredictionError
	return errors.As(err, &pe) && pe.Kind == intake.KindTransport
}
