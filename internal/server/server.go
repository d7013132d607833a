package server

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ryooooooya/shogi-ganbaru/internal/kif"
	"github.com/ryooooooya/shogi-ganbaru/internal/msgcat"
	svckifu "github.com/ryooooooya/shogi-ganbaru/internal/service/kifu"
	"github.com/ryooooooya/shogi-ganbaru/pkg/kifudto"
)

// Server は棋譜アップロードと参照のHTTP面。
type Server struct {
	app *fiber.App
	svc *svckifu.Service
	cat *msgcat.Catalog
	log *zap.Logger
}

func New(svc *svckifu.Service, cat *msgcat.Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, cat: cat, log: logger}

	app := fiber.New(fiber.Config{
		AppName:               "shogi-ganbaru",
		BodyLimit:             4 * 1024 * 1024, // 棋譜はテキストなので十分
		DisableStartupMessage: true,
	})

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Post("/kifu", s.handleUpload)
	api.Get("/kifu", s.handleRecent)
	api.Get("/kifu/:id", s.handleGet)
	api.Post("/kifu/:id/analyze", s.handleAnalyze)
	api.Put("/kifu/:id/commentary", s.handleCommentary)
	api.Get("/stats", s.handleStats)

	s.app = app
	return s
}

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }
func (s *Server) Shutdown() error          { return s.app.Shutdown() }

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleUpload は棋譜テキスト1件を受け取って登録する。
// multipart の file フィールドと生テキストボディの両方を受ける。
func (s *Server) handleUpload(c *fiber.Ctx) error {
	raw, err := uploadBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(kifudto.ErrorResponse{Error: err.Error()})
	}

	k, err := s.svc.Upload(c.Context(), raw)
	switch {
	case errors.Is(err, kif.ErrNoMoves):
		return s.jsonError(c, fiber.StatusBadRequest, "upload.no_moves")
	case errors.Is(err, svckifu.ErrDuplicateKifu):
		return s.jsonError(c, fiber.StatusConflict, "upload.duplicate")
	case err != nil:
		s.log.Error("kifu upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(kifudto.ErrorResponse{Error: "internal error"})
	}

	msgKey := "upload.ok"
	if k.Opponent == "" {
		msgKey = "upload.ok_no_opponent"
	}
	msg := s.cat.RenderOr(msgKey, map[string]any{
		"Opponent":   k.Opponent,
		"TotalMoves": k.TotalMoves,
		"Result":     s.resultLabel(k.Result),
	}, "")

	return c.Status(fiber.StatusCreated).JSON(kifudto.UploadResponse{
		Kifu:    toSummary(k),
		Message: msg,
	})
}

func (s *Server) handleRecent(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	items, err := s.svc.Recent(c.Context(), limit)
	if err != nil {
		s.log.Error("kifu list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(kifudto.ErrorResponse{Error: "internal error"})
	}
	resp := kifudto.ListResponse{Kifus: make([]kifudto.KifuSummary, 0, len(items))}
	for _, k := range items {
		resp.Kifus = append(resp.Kifus, toSummary(k))
	}
	return c.JSON(resp)
}

func (s *Server) handleGet(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(kifudto.ErrorResponse{Error: "invalid id"})
	}
	k, err := s.svc.Get(c.Context(), id)
	if errors.Is(err, svckifu.ErrKifuNotFound) {
		return s.jsonError(c, fiber.StatusNotFound, "kifu.not_found")
	}
	if err != nil {
		s.log.Error("kifu get failed", zap.Int64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(kifudto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(toDetail(k))
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(kifudto.ErrorResponse{Error: "invalid id"})
	}
	k, err := s.svc.Analyze(c.Context(), id)
	switch {
	case errors.Is(err, svckifu.ErrKifuNotFound):
		return s.jsonError(c, fiber.StatusNotFound, "kifu.not_found")
	case errors.Is(err, svckifu.ErrAnalyzerUnavailable):
		return s.jsonError(c, fiber.StatusServiceUnavailable, "engine.unavailable")
	case err != nil:
		s.log.Error("kifu analyze failed", zap.Int64("id", id), zap.Error(err))
		return s.jsonError(c, fiber.StatusBadGateway, "engine.failed")
	}
	return c.JSON(toDetail(k))
}

// handleCommentary は感想戦メモを差し替える。本文は生テキスト。
func (s *Server) handleCommentary(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(kifudto.ErrorResponse{Error: "invalid id"})
	}
	k, err := s.svc.SetCommentary(c.Context(), id, string(c.Body()))
	if errors.Is(err, svckifu.ErrKifuNotFound) {
		return s.jsonError(c, fiber.StatusNotFound, "kifu.not_found")
	}
	if err != nil {
		s.log.Error("commentary update failed", zap.Int64("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(kifudto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(toDetail(k))
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	st, err := s.svc.Stats(c.Context())
	if err != nil {
		s.log.Error("stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(kifudto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(toStats(st))
}

func (s *Server) jsonError(c *fiber.Ctx, status int, msgKey string) error {
	return c.Status(status).JSON(kifudto.ErrorResponse{
		Error: s.cat.RenderOr(msgKey, nil, msgKey),
	})
}

func (s *Server) resultLabel(result string) string {
	return s.cat.RenderOr("result."+result, nil, result)
}

func uploadBody(c *fiber.Ctx) (string, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", errors.New("multipart upload requires a file field")
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return string(c.Body()), nil
}
