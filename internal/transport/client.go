package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/2021147588/boheommian-rhapsody/internal/logger"
	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// DefaultMaxSamples replaces a zero sample count on submit.
const DefaultMaxSamples = 10

var ErrReportNotFound = errors.New("final report not found")

// StatusError is returned for non-2xx responses from the simulation backend.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP error status %d", e.Endpoint, e.Code)
}

// Upload is a scenario file chosen by the user.
type Upload struct {
	Filename string
	Content  []byte
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    uint64
	log        *logger.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.Component("transport") }
}

// WithRetries sets how many extra attempts follow a failed request. Default 0.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        logger.New().Component("transport"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type submitEnvelope struct {
	Message string                 `json:"message"`
	Data    types.SimulationResult `json:"data"`
}

// Submit uploads a scenario file and waits for the whole simulation result.
func (c *Client) Submit(ctx context.Context, up Upload, maxTurns, maxSamples int) (types.SimulationResult, error) {
	if err := AdmitFile(up.Filename); err != nil {
		return types.SimulationResult{}, err
	}
	if maxSamples == 0 {
		maxSamples = DefaultMaxSamples
	}
	log := c.log.WithField("file", up.Filename)

	body, err := c.do(ctx, "/submit", func() (*http.Request, error) {
		var b bytes.Buffer
		w := multipart.NewWriter(&b)
		fw, err := w.CreateFormFile("file", up.Filename)
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(up.Content); err != nil {
			return nil, err
		}
		_ = w.WriteField("max_turns", strconv.Itoa(maxTurns))
		_ = w.WriteField("max_samples", strconv.Itoa(maxSamples))
		if err := w.Close(); err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submit", &b)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return req, nil
	})
	if err != nil {
		log.WithError(err).Warn("submit failed")
		return types.SimulationResult{}, err
	}

	var env submitEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return types.SimulationResult{}, fmt.Errorf("decode submit response: %w", err)
	}
	log.WithField("conversations", len(env.Data.Conversations)).Info("simulation result received")
	return env.Data, nil
}

type reportEnvelope struct {
	FinalReport types.FinalReport `json:"final_report"`
}

// FetchReport loads a customer's final report by name. Any non-2xx status,
// or a body without a report, is ErrReportNotFound.
func (c *Client) FetchReport(ctx context.Context, name string) (types.FinalReport, error) {
	body, err := c.do(ctx, "/load-report", func() (*http.Request, error) {
		u := c.baseURL + "/load-report?" + url.Values{"name": {name}}.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	var se *StatusError
	if errors.As(err, &se) {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var env reportEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode report response: %w", err)
	}
	if len(env.FinalReport) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return env.FinalReport, nil
}

// Document is a generated report ready for download.
type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportFilename is the download name for a customer's generated report.
func ReportFilename(customer string) string {
	return fmt.Sprintf("insurance_report_%s.html", customer)
}

// GenerateReport asks the backend to render a document for one conversation.
func (c *Client) GenerateReport(ctx context.Context, conv types.ConversationRecord) (Document, error) {
	payload, err := json.Marshal(conv)
	if err != nil {
		return Document{}, fmt.Errorf("encode conversation: %w", err)
	}
	var contentType string
	body, err := c.do(ctx, "/generate-report", func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate-report", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, func(resp *http.Response) { contentType = resp.Header.Get("Content-Type") })
	if err != nil {
		return Document{}, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Document{Filename: ReportFilename(conv.CustomerName()), ContentType: contentType, Content: body}, nil
}

// do sends one request built by build, plus c.retries further attempts on
// failure. 4xx responses are never retried.
func (c *Client) do(ctx context.Context, endpoint string, build func() (*http.Request, error), onResp ...func(*http.Response)) ([]byte, error) {
	var out []byte
	op := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build %s request: %w", endpoint, err))
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%s: %w", endpoint, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			se := &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(body)}
			if resp.StatusCode < 500 {
				return backoff.Permanent(se)
			}
			return se
		}
		NotifyAccepted(ctx)
		for _, f := range onResp {
			f(resp)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s: read body: %w", endpoint, err)
		}
		out = body
		return nil
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return out, nil
}
