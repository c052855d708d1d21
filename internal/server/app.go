package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matysek/pip-accel/internal/cache"
)

const contextKeyRequestID = "_pipaccel_request_id"

// AppOptions 控制共享缓存服务的组装方式。
type AppOptions struct {
	Logger  *logrus.Logger
	Backend cache.Backend
}

// NewApp 构建共享缓存服务的 Fiber 应用：请求 ID 中间件 + 缓存读写路由。
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("cache backend is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	app.Get("/-/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/cache", handleList(opts))
	app.Get("/cache/*", handleGet(opts))
	app.Put("/cache/*", handlePut(opts))
	app.Delete("/cache/*", handleRemove(opts))

	return app, nil
}

// requestIDMiddleware 为每个请求生成 ID，便于跨日志行关联同一次访问。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func handleGet(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := c.Params("*")
		result, err := opts.Backend.Get(requestContext(c), key)
		if err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				return renderError(c, fiber.StatusNotFound, "entry_not_found")
			}
			return logAndRenderError(c, opts.Logger, "cache_get", key, err)
		}
		defer result.Reader.Close()

		if !result.Entry.ModTime.IsZero() {
			c.Set("Last-Modified", result.Entry.ModTime.UTC().Format(http.TimeFormat))
		}
		if result.Entry.SizeBytes > 0 {
			c.Response().Header.SetContentLength(int(result.Entry.SizeBytes))
		}
		c.Status(fiber.StatusOK)

		if _, err := io.Copy(c.Response().BodyWriter(), result.Reader); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return nil
	}
}

func handlePut(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := c.Params("*")

		putOpts := cache.PutOptions{}
		if raw := string(c.Request().Header.Peek("Last-Modified")); raw != "" {
			modTime, err := http.ParseTime(raw)
			if err != nil {
				return renderError(c, fiber.StatusBadRequest, "invalid_last_modified")
			}
			putOpts.ModTime = modTime
		}

		entry, err := opts.Backend.Put(requestContext(c), key, bytes.NewReader(c.Body()), putOpts)
		if err != nil {
			return logAndRenderError(c, opts.Logger, "cache_put", key, err)
		}

		opts.Logger.WithFields(logrus.Fields{
			"action":     "cache_put",
			"key":        key,
			"size_bytes": entry.SizeBytes,
			"request_id": RequestID(c),
		}).Info("缓存条目写入")

		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

func handleList(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		prefix := string(c.Request().URI().QueryArgs().Peek("prefix"))
		entries, err := opts.Backend.List(requestContext(c), prefix)
		if err != nil {
			return logAndRenderError(c, opts.Logger, "cache_list", prefix, err)
		}
		if entries == nil {
			entries = []cache.Entry{}
		}
		return c.JSON(entries)
	}
}

func handleRemove(opts AppOptions) fiber.Handler {
	return func(c fiber.Ctx) error {
		key := c.Params("*")
		if err := opts.Backend.Remove(requestContext(c), key); err != nil {
			return logAndRenderError(c, opts.Logger, "cache_remove", key, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func requestContext(c fiber.Ctx) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func renderError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

func logAndRenderError(c fiber.Ctx, logger *logrus.Logger, action, key string, err error) error {
	logger.WithFields(logrus.Fields{
		"action":     action,
		"key":        key,
		"request_id": RequestID(c),
	}).Warn(err.Error())
	return renderError(c, fiber.StatusInternalServerError, "cache_backend_error")
}

// ShutdownTimeout 是优雅退出时等待在途请求完成的时间。
const ShutdownTimeout = 5 * time.Second
