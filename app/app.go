// Package app is the public job board and admin panel web server.
package app

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dharvista/site/datamodels"
	"github.com/dharvista/site/resume"
	"github.com/dharvista/site/screening"
	"github.com/dharvista/site/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

//go:embed templates
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// A function that handles a request and returns data for a template.
type PageDataHandler func(ctx *gin.Context, logger *slog.Logger) (any, error)

// A function that returns the main and auxiliary templates to be rendered.
type PageTemplateDefiner func(ctx *gin.Context, logger *slog.Logger) []string

// A function that performs a form action and returns where to redirect to.
type ActionHandler func(ctx *gin.Context, logger *slog.Logger) (string, error)

// errNotFound is returned by handlers for anything that should render the 404 page.
var errNotFound = errors.New("not found")

// App collects all data for running the webserver.
type App struct {
	config   Config
	logger   *slog.Logger
	store    storage.Manager
	resumes  *resume.Store
	settings SettingsSource
	watcher  *SettingsWatcher
	screener screening.Screener
	sessions *sessionStore
	now      func() time.Time
}

// Deps are the collaborators of an App. Screener may be nil, which hides screening.
type Deps struct {
	Config   Config
	Logger   *slog.Logger
	Store    storage.Manager
	Resumes  *resume.Store
	Settings SettingsSource
	Screener screening.Screener
	Now      func() time.Time
}

// New creates an app from already built parts.
func New(deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Settings == nil {
		deps.Settings = StaticSettings(datamodels.DefaultSiteSettings())
	}
	if deps.Config.SessionTTL <= 0 {
		deps.Config.SessionTTL = 12 * time.Hour
	}
	return &App{
		config:   deps.Config,
		logger:   deps.Logger,
		store:    deps.Store,
		resumes:  deps.Resumes,
		settings: deps.Settings,
		screener: deps.Screener,
		sessions: newSessionStore(deps.Config.SessionTTL, deps.Now),
		now:      deps.Now,
	}
}

// Create a new app from the config, opening the store and every optional service it names.
func BuildApp(ctx context.Context, cfg Config, logger *slog.Logger) (*App, error) {
	logger.Info("Opening store", "driver", cfg.StorageDriver)
	store, err := storage.Open(ctx, cfg.StorageDriver, cfg.StorageDSN)
	if err != nil {
		return nil, err
	}

	logger.Info("Setting up resume storage", "dir", cfg.UploadDir)
	resumes, err := resume.NewStore(cfg.UploadDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	deps := Deps{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Resumes: resumes,
	}

	var watcher *SettingsWatcher
	if cfg.SettingsPath != "" {
		logger.Info("Reading site settings", "path", cfg.SettingsPath)
		watcher, err = NewSettingsWatcher(cfg.SettingsPath, logger)
		if err != nil {
			store.Close()
			return nil, err
		}
		deps.Settings = watcher
	}

	if cfg.ScreeningEnabled() {
		logger.Info("Creating model builder", "model", cfg.ScreeningModel)
		mb, err := screening.NewModelBuilder(cfg.ScreeningModelOptions())
		if err != nil {
			store.Close()
			return nil, err
		}
		deps.Screener = screening.NewReviewer(mb, cfg.ScreeningRepeats)
	} else {
		logger.Info("No OpenAI API key, resume screening disabled")
	}

	a := New(deps)
	a.watcher = watcher
	logger.Info("Server preparation successful")
	return a, nil
}

// Store returns the record store the app serves.
func (app *App) Store() storage.Manager {
	return app.store
}

// Close releases the store.
func (app *App) Close() error {
	return app.store.Close()
}

// Handler builds the gin engine with every route registered.
func (app *App) Handler() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	app.setupHandlers(r)
	return r
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (app *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	if app.watcher != nil {
		if err := app.watcher.Start(ctx); err != nil {
			return err
		}
		defer app.watcher.Stop()
	}
	g.Go(func() error {
		app.logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("Server failed to listen", "addr", srv.Addr, "error", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		app.logger.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// redirectTo can be returned by a PageDataHandler to redirect instead of rendering.
type redirectTo string

// layoutTemplate is the full page layout. Any other first template is rendered as a bare partial.
const layoutTemplate = "page"

// layoutData wraps the data of every rendered page.
type layoutData struct {
	Site     datamodels.SiteSettings
	Path     string
	LoggedIn bool
	Year     int
	Page     any
}

func (app *App) requestLogger(ctx *gin.Context) *slog.Logger {
	logger := app.logger.With("txid", uuid.New().String())
	logger.Info("Incoming request", "method", ctx.Request.Method, "path", ctx.Request.URL.Path)
	return logger
}

// Create a handler that calls the data handler then renders the data using the templates
func (app *App) handlePage(dataHandler PageDataHandler, templateDefiner PageTemplateDefiner) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestLogger := app.requestLogger(ctx)
		templates := templateDefiner(ctx, requestLogger)

		data, err := dataHandler(ctx, requestLogger)
		if err != nil {
			app.renderError(ctx, requestLogger, err)
			return
		}
		if loc, ok := data.(redirectTo); ok {
			ctx.Redirect(http.StatusSeeOther, string(loc))
			requestLogger.Info("Finished request", "redirect", string(loc))
			return
		}
		app.render(ctx, requestLogger, ctx.Writer.Status(), templates, data)
		requestLogger.Info("Finished request", "status", ctx.Writer.Status())
	}
}

// Create a handler that runs a form action and redirects to the location it returns.
func (app *App) handleAction(action ActionHandler) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestLogger := app.requestLogger(ctx)
		location, err := action(ctx, requestLogger)
		if err != nil {
			app.renderError(ctx, requestLogger, err)
			return
		}
		ctx.Redirect(http.StatusSeeOther, location)
		requestLogger.Info("Finished request", "redirect", location)
	}
}

func (app *App) parseTemplates(templates []string) (*template.Template, error) {
	templatesToParse := make([]string, 0, len(templates))
	for _, t := range templates {
		templatesToParse = append(templatesToParse, "templates/"+t+".html")
	}
	return template.New("").Funcs(templateFuncs).ParseFS(templatesFS, templatesToParse...)
}

func (app *App) render(ctx *gin.Context, logger *slog.Logger, status int, templates []string, data any) {
	tmpl, err := app.parseTemplates(templates)
	if err != nil {
		logger.Error("Template parse failed", "templates", templates, "error", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	if templates[0] == layoutTemplate {
		data = layoutData{
			Site:     app.settings.Settings(),
			Path:     ctx.Request.URL.Path,
			LoggedIn: app.isAdmin(ctx),
			Year:     app.now().Year(),
			Page:     data,
		}
	}
	var buf bytes.Buffer
	if err = tmpl.ExecuteTemplate(&buf, templates[0], data); err != nil {
		logger.Error("Template render failed", "templates", templates, "error", err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

type errorPageData struct {
	Title   string
	Status  int
	Message string
}

// renderError maps err to a status code and renders the error page.
func (app *App) renderError(ctx *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	data := errorPageData{Status: status}
	switch status {
	case http.StatusNotFound:
		data.Title = "Page Not Found"
		data.Message = "The page you are looking for does not exist."
		logger.Info("Not found", "error", err)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		data.Title = "Invalid Request"
		data.Message = err.Error()
		logger.Warn("Bad request", "error", err)
	default:
		data.Title = "Something Went Wrong"
		data.Message = "Please try again later."
		logger.Error("Request failed", "error", err)
	}
	if ctx.GetHeader("HX-Request") == "true" {
		ctx.String(status, data.Message)
		return
	}
	app.render(ctx, logger, status, pageTemplates("error"), data)
}

func (app *App) notFound(ctx *gin.Context) {
	app.renderError(ctx, app.requestLogger(ctx), fmt.Errorf("%w: %s", errNotFound, ctx.Request.URL.Path))
}

// statusFor maps the errors handlers return to HTTP status codes.
func statusFor(err error) int {
	var verr *datamodels.ValidationError
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, storage.ErrJobNotFound),
		errors.Is(err, storage.ErrApplicantNotFound),
		errors.Is(err, resume.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verr),
		errors.Is(err, resume.ErrNotPDF),
		errors.Is(err, resume.ErrTooLarge),
		errors.Is(err, screening.ErrNoResumeText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
