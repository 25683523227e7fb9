// Пакет docexport поднимает HTTP сервис экспорта документов редактора в Markdown, HTML и PDF.
//
// Основные возможности:
//   - REST API экспорта и импорта документов.
//   - Сохранение артефактов в S3 совместимое хранилище или локальный каталог со сроком жизни.
//   - MCP сервер для LLM агентов.
//   - Метрики Prometheus на отдельном порту.
package docexport

// @title DocExport API
// @version 1.0
// @description Экспорт документов редактора в Markdown, HTML и PDF.
// @BasePath /

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/aisa-it/docexport/internal/docexport/business"
	"github.com/aisa-it/docexport/internal/docexport/config"
	"github.com/aisa-it/docexport/internal/docexport/cronmanager"
	_ "github.com/aisa-it/docexport/internal/docexport/docs"
	filestorage "github.com/aisa-it/docexport/internal/docexport/file-storage"
	"github.com/aisa-it/docexport/internal/docexport/maintenance"
	docmcp "github.com/aisa-it/docexport/internal/docexport/mcp"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"
)

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.5 init -ot go --generalInfo /http.go --parseInternal --propertyStrategy snakecase --dir ./ --output docs
//go:generate echo "Generate docs"
//go:generate go run ../../cmd/docsgen/main.go -src apierrors/apierrors.go -out ../../docs/api_errors.md

const shutdownTimeout = 10 * time.Second

type Services struct {
	cfg      *config.Config
	version  string
	storage  filestorage.FileStorage
	business *business.Business

	registerer prometheus.Registerer
}

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "DocExport")
		return next(c)
	}
}

// NewServices инициализирует хранилище артефактов и business слой.
func NewServices(cfg *config.Config, version string) (*Services, error) {
	storage, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}
	return &Services{
		cfg:        cfg,
		version:    version,
		storage:    storage,
		business:   business.NewBL(cfg, storage),
		registerer: prometheus.DefaultRegisterer,
	}, nil
}

func newStorage(cfg *config.Config) (filestorage.FileStorage, error) {
	switch {
	case cfg.S3Enabled():
		slog.Info("Artifacts storage", "type", "s3", "endpoint", cfg.AWSEndpoint, "bucket", cfg.AWSBucketName)
		return filestorage.NewMinioStorage(cfg.AWSEndpoint, cfg.AWSAccessKey, cfg.AWSSecretKey, cfg.AWSUseSSL, cfg.AWSBucketName)
	case cfg.StorageDir != "":
		slog.Info("Artifacts storage", "type", "local", "dir", cfg.StorageDir)
		return filestorage.NewLocalStorage(cfg.StorageDir)
	}
	slog.Info("Artifacts storage disabled")
	return nil, nil
}

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	switch code {
	case http.StatusNotFound:
		c.NoContent(http.StatusNotFound)
		return
	case http.StatusRequestEntityTooLarge:
		EErrorDefined(c, apierrors.ErrEntityToLarge)
		return
	}
	slog.Error("Unhandled error in endpoint", "url", c.Request().URL, "err", err)
	EErrorMsgStatus(c, nil, code)
}

// NewEcho собирает HTTP сервер со всеми маршрутами API.
func (s *Services) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(ServerHeader)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(s.cfg.BodyLimit))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     5,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/mcp")
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "docexport",
		Registerer: s.registerer,
	}))
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.Contains(c.Request().URL.Path, "swagger")
		},
	}))

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")

	s.AddExportServices(apiGroup)

	apiGroup.GET("version/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"version": s.version,
			"storage": s.business.StorageEnabled(),
			"mcp":     s.cfg.MCPEnable,
			"formats": []business.Format{business.FormatMarkdown, business.FormatHTML, business.FormatPDF, business.FormatPrint},
		})
	})

	apiGroup.GET("_health/", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if s.cfg.SwaggerEnable {
		apiGroup.GET("swagger/*", echoSwagger.WrapHandler)
	}

	if s.cfg.MCPEnable {
		apiGroup.Any("mcp/", docmcp.NewMCPServer(s.business, s.version))
	}

	return e
}

// Server запускает сервис и блокируется до остановки.
func Server(cfg *config.Config, version string) {
	s, err := NewServices(cfg, version)
	if err != nil {
		slog.Error("Fail init artifacts storage", "err", err)
		os.Exit(1)
	}

	jobRegistry := cronmanager.JobRegistry{}
	if s.storage != nil {
		jobRegistry[maintenance.ArtifactsCleanJob] = cronmanager.Job{
			Func:     maintenance.NewArtifactsCleaner(s.storage, cfg.ExportTTL()).Run,
			Schedule: "0 * * * *", // every hour
		}
	}

	cronManager := cronmanager.NewCronManager(jobRegistry)
	if err := cronManager.LoadJobs(); err != nil {
		slog.Error("Failed to load cron jobs", "err", err)
		os.Exit(1)
	}
	cronManager.Start()

	e := s.NewEcho()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down gracefully, press Ctrl+C again to force")
		cronManager.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown", "err", err)
		}
	}()

	go func() {
		bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docexport",
			Name:      "boot_time",
			Help:      "Server startup time",
		})
		bootTimeGauge.Set(float64(time.Now().UnixMilli()))

		if err := prometheus.Register(bootTimeGauge); err != nil {
			slog.Error("Register boot time gauge", "err", err)
			os.Exit(1)
		}

		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server fail", "err", err)
		}
	}()

	slog.Info("DocExport listen", "addr", cfg.ServerAddr, "version", version)
	if err := e.Start(cfg.ServerAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server fail", "err", err)
	}
}
