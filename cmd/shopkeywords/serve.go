package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/httpapi"
	"shopkeywords-engine/internal/logger"
	"shopkeywords-engine/internal/scheduler"
	"shopkeywords-engine/internal/secrets"
)

func newServeCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve keyword results over a local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.valid(); err != nil {
				return err
			}
			port := s.cfg.App.Port
			if s.v.IsSet("port") {
				port = s.v.GetInt("port")
			}
			return serve(cmd.Context(), s, fmt.Sprintf("127.0.0.1:%d", port))
		},
	}
	cmd.Flags().Int("port", 0, "listen port on 127.0.0.1 (default app.port)")
	_ = s.v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}

func serve(ctx context.Context, s *settings, addr string) error {
	apiKey, err := secrets.ResolveAPIKey(s.apiKey)
	if err != nil {
		return err
	}
	tagger, err := newTagger()
	if err != nil {
		return fmt.Errorf("load tagger: %w", err)
	}
	runner, cache, release, err := newRunner(ctx, s.cfg, apiKey)
	if err != nil {
		return err
	}
	defer release()

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(s.cfg)
	cfgPath := s.cfgPath
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return cfg, err
		}
		cfg, vr := config.NormalizeAndValidate(cfg)
		return cfg, vr.Err()
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Runner:      runner,
		Tagger:      tagger,
		Cache:       cache,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     loadCfg,
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if cache != nil {
		ttl := time.Duration(s.cfg.Cache.TTLMinutes) * time.Minute
		go scheduler.Every(ctx, ttl, "cache-prune", func(ctx context.Context) error {
			n, err := cache.PruneBefore(ctx, time.Now().Add(-ttl))
			if err == nil && n > 0 {
				logger.Info("[store] pruned shops=%d", n)
			}
			return err
		})
	}

	logger.Info("[serve] listening on http://%s (config=%s cache=%v)", addr, cfgPath, cache != nil)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("[serve] stopped")
	return nil
}
