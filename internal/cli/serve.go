package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/locuszoom/pkg/errors"
	"github.com/matzehuels/locuszoom/pkg/observability"
	"github.com/matzehuels/locuszoom/pkg/observability/prom"
)

// shutdownTimeout bounds graceful shutdown after the context is cancelled.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve plots over HTTP",
		Long: `Serve region plots over HTTP.

Endpoints:
  GET /plots/{layout}.svg?region=10:114550452-115067678[&ldrefvar=...&width=...]
  GET /plots/{layout}.json?region=...
  GET /layouts
  GET /layouts/{kind}/{name}[?namespace=key=value]
  GET /sources
  GET /healthz
  GET /metrics

With --watch, changes to the configured layouts_dir are picked up without
a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, watch, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, or :8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload layouts_dir on change")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr string, watch, noCache bool) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if addr == "" {
		addr = ":8080"
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom.New(reg).Install()
	defer observability.Reset()

	srv := newServer(runner, reg, logger)

	if watch {
		if cfg.LayoutsDir == "" {
			return errors.New(errors.ErrCodeConfig, "--watch requires layouts_dir in the config")
		}
		w, err := newLayoutWatcher(cfg.LayoutsDir, func() error {
			layouts, err := cfg.newLayouts()
			if err != nil {
				return err
			}
			srv.setLayouts(layouts)
			return nil
		}, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		go w.Run(ctx)
		logger.Info("watching layouts", "dir", cfg.LayoutsDir)
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))
	printNextStep("Try", "curl 'http://"+displayAddr(addr)+"/plots/standard_association.svg?region=10:114550452-115067678'")
	if err := httpSrv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(errors.ErrCodeInternal, err, "serve %s", addr)
	}
	logger.Info("server stopped")
	return nil
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
