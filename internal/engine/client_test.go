package engine

import (
	"context"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

func newTestClient(t *testing.T, handler fasthttp.RequestHandler) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, handler) }()
	t.Cleanup(func() { _ = ln.Close() })

	c := NewClient("http://engine", WithTimeout(2*time.Second), WithRetry(3))
	c.http.Dial = func(addr string) (net.Conn, error) { return ln.Dial() }
	return c
}

func TestAnalyzeDecodesResponse(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/analyze" || !ctx.IsPost() {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		if !strings.Contains(string(ctx.PostBody()), "７六歩") {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{
			"evals": [
				{"move_num": 0, "move": "開始局面", "score": 28, "best_move_usi": "2g2f", "best_move_ja": ""},
				{"move_num": 1, "move": "７六歩(77)", "score": 34, "best_move_usi": "8c8d", "best_move_ja": ""}
			],
			"blunders": [
				{"move_num": 1, "move": "７六歩(77)", "score": 34, "best_move_usi": "8c8d", "best_move_ja": "", "drop": 120}
			]
		}`)
	})

	evals, blunders, err := c.Analyze(context.Background(), "   1 ７六歩(77)   ( 0:03/00:00:03)\n")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(evals) != 2 || evals[1].Score != 34 || evals[1].BestMoveUSI != "8c8d" {
		t.Fatalf("evals decoded wrong: %+v", evals)
	}
	if len(blunders) != 1 || blunders[0].Drop != 120 {
		t.Fatalf("blunders decoded wrong: %+v", blunders)
	}
}

func TestAnalyzeRetriesOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if atomic.AddInt32(&calls, 1) == 1 {
			ctx.SetStatusCode(fasthttp.StatusBadGateway)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"evals": [], "blunders": []}`)
	})

	_, _, err := c.Analyze(context.Background(), "kif")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("calls = %d, want 2 (one retry)", n)
	}
}

func TestAnalyzeDoesNotRetryClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		atomic.AddInt32(&calls, 1)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetBodyString(`{"detail": "KIFのパースに失敗しました"}`)
	})

	_, _, err := c.Analyze(context.Background(), "broken")
	if err == nil {
		t.Fatalf("expected error on 400")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on 4xx)", n)
	}
}

func TestHealth(t *testing.T) {
	c := newTestClient(t, func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/health" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status": "ok", "engine": "/usr/local/bin/fairy-stockfish"}`)
	})
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}
}
