package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jakubkanna/labguy-manager/config"
	"github.com/jakubkanna/labguy-manager/internal/adminui"
	httpapi "github.com/jakubkanna/labguy-manager/internal/api/http"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/admin"
	"github.com/jakubkanna/labguy-manager/internal/apisrv/auth"
	"github.com/jakubkanna/labguy-manager/internal/bucket"
	"github.com/jakubkanna/labguy-manager/internal/dependency"
	"github.com/jakubkanna/labguy-manager/internal/metrics"
	"github.com/jakubkanna/labguy-manager/internal/ratelimit"
	"github.com/jakubkanna/labguy-manager/internal/requester"
	"github.com/jakubkanna/labguy-manager/internal/revalidation"
	"github.com/jakubkanna/labguy-manager/internal/store"
	"github.com/jakubkanna/labguy-manager/internal/store/memstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the main application
type App struct {
	hs    *httpapi.Server
	db    dependency.Repository
	adm   *admin.Server
	c     *config.Config
	done  chan struct{}
	close sync.Once
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start connects the store and the bucket and starts the http server.
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting labguy manager")

	if a.c.DB.DSN == "" {
		slog.Default().WarnContext(ctx, "no mysql dsn configured, content is kept in memory")
		a.db = memstore.New()
	} else {
		a.db, err = store.New(ctx, a.c.DB)
		if err != nil {
			slog.Default().ErrorContext(ctx, "couldn't connect to mysql", slog.String("err", err.Error()))
			return err
		}
	}

	limiter := ratelimit.NewMultiKeyLimiter(a.c.RateLimit)
	authS, err := auth.New(&a.c.Auth, a.db.Admin(), limiter)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create new auth server", slog.String("err", err.Error()))
		return err
	}

	b, err := bucket.New(&a.c.Bucket)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create new bucket", slog.String("err", err.Error()))
		return err
	}

	var re dependency.Revalidator
	if a.c.Revalidation.Enabled() {
		re = revalidation.New(&a.c.Revalidation)
	} else {
		slog.Default().WarnContext(ctx, "revalidation is not configured, the public site won't be notified")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	a.adm = admin.New(a.db, b, re, limiter)

	rc := a.c.Requester
	if rc.BaseURL == "" {
		rc.BaseURL = fmt.Sprintf("http://127.0.0.1:%s/api", a.c.HTTP.Port)
	}
	api, err := requester.New(&rc)
	if err != nil {
		return err
	}
	ui, err := adminui.New(&a.c.UI, api, m)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed create admin ui", slog.String("err", err.Error()))
		return err
	}

	a.hs = httpapi.New(&a.c.HTTP)
	err = a.hs.Start(ctx, httpapi.Handlers{
		Admin:    a.adm,
		Auth:     authS,
		UI:       ui.Routes(),
		Metrics:  m,
		Gatherer: reg,
		Health:   a.db.Ping,
	})
	if err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server", slog.String("err", err.Error()))
		return err
	}
	go func() {
		<-a.hs.Done()
		a.close.Do(func() { close(a.done) })
	}()
	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		if err := a.hs.Stop(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "http server shutdown", slog.String("err", err.Error()))
		}
	}
	if a.adm != nil {
		a.adm.Wait()
	}
	if a.db != nil {
		a.db.Close()
	}
	a.close.Do(func() { close(a.done) })
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() <-chan struct{} {
	return a.done
}
