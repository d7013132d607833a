package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/ryooooooya/shogi-ganbaru/internal/domain"
)

// Client は解析エンジンAPI（fairy-stockfish サイドカー）のHTTPクライアント。
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// 全手解析は1リクエストが長い。読み取りは余裕を持たせる。
		http:           &fasthttp.Client{ReadTimeout: 120 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 8},
		defaultTimeout: 120 * time.Second,
		retryMax:       2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type analyzeRequest struct {
	Kif string `json:"kif"`
}

type analyzeResponse struct {
	Evals    []domain.MoveEval `json:"evals"`
	Blunders []domain.Blunder  `json:"blunders"`
}

type healthResponse struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}

// Analyze は棋譜テキストを全手解析にかける。kifu.Analyzer を満たす。
func (c *Client) Analyze(ctx context.Context, kifRaw string) ([]domain.MoveEval, []domain.Blunder, error) {
	var resp analyzeResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/analyze", analyzeRequest{Kif: kifRaw}, &resp, true); err != nil {
		return nil, nil, err
	}
	return resp.Evals, resp.Blunders, nil
}

func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/health", nil, &resp, false); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("engine unhealthy: status=%s", resp.Status)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return lastErr
			}
			if serr := sleepWithContext(ctx, backoffDuration(attempt)); serr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("engine api error: status=%d body=%s", status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if serr := sleepWithContext(ctx, backoffDuration(attempt)); serr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
