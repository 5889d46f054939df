package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vijayasainandipati/Agri-Ai-2/internal/actions"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/agri"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/auth"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/catalog"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/gateway"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/i18n"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/metrics"
	"github.com/vijayasainandipati/Agri-Ai-2/internal/store"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/config"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/flow"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/models"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/prompt"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/s3storage"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/tools"
	"github.com/vijayasainandipati/Agri-Ai-2/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, shutdown := utils.SetupGracefulShutdown(cmd.Context())
	defer shutdown()

	var traceOut io.Writer
	if appCfg.App.TraceStdout {
		traceOut = cmd.OutOrStdout()
	}
	stopTracing, err := metrics.InitTracing(traceOut)
	if err != nil {
		return err
	}
	defer func() {
		if err := stopTracing(context.Background()); err != nil {
			utils.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	tr, err := i18n.Default()
	if err != nil {
		return err
	}

	executor, err := buildExecutor(ctx, appCfg)
	if err != nil {
		return err
	}
	flowMetrics, err := metrics.NewFlowMetrics()
	if err != nil {
		return err
	}
	executor.SetObserver(flowMetrics)

	apps, err := store.Open(ctx, appCfg.Store)
	if err != nil {
		return err
	}
	defer apps.Close()
	checks := []gateway.ReadinessCheck{{Name: "store", Check: apps.Ping}}

	var objects actions.ObjectStore
	if appCfg.S3Enabled() {
		client, err := s3storage.New(appCfg.S3)
		if err != nil {
			return fmt.Errorf("failed to create s3 client: %w", err)
		}
		objects = client
		checks = append(checks, gateway.ReadinessCheck{Name: "s3", Check: client.Ping})
	} else {
		utils.Warn("S3 is not configured, applications with documents will be rejected")
	}

	var jm *auth.JWTManager
	if appCfg.Auth.JWTSecret != "" {
		if jm, err = auth.NewJWTManager(appCfg.Auth); err != nil {
			return err
		}
	} else {
		utils.Warn("auth.jwt_secret is empty, every request is anonymous")
	}

	cat, err := catalog.New(tr)
	if err != nil {
		return err
	}
	defer cat.Close()

	gw := actions.NewGateway(executor, apps, objects, tr, actions.WithRecorder(flowMetrics))
	handler := gateway.NewHandler(gw, cat, tr, appCfg.Server.MaxUploadBytes, checks...)

	if !appCfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:         appCfg.Server.Addr,
		Handler:      gateway.NewRouter(handler, jm),
		ReadTimeout:  appCfg.Server.ReadTimeout,
		WriteTimeout: appCfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.Info("HTTP server listening", "addr", srv.Addr, "flows", len(gw.Flows()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.Server.ShutdownTimeout)
		defer cancel()
		utils.Info("Shutting down HTTP server", "timeout", appCfg.Server.ShutdownTimeout)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildExecutor собирает реестры моделей, инструментов и flow.
func buildExecutor(ctx context.Context, cfg *config.AppConfig) (*flow.Executor, error) {
	modelRegistry, err := models.NewRegistryFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	utils.Debug("Models registered", "models", modelRegistry.ListNames())

	flows := flow.NewRegistry()
	toolRegistry := tools.NewRegistry()
	deps := agri.Deps{
		Models:    modelRegistry,
		ChatModel: cfg.Models.DefaultChat,
	}
	if err := agri.RegisterFlows(flows, toolRegistry, deps, cfg.Flows); err != nil {
		return nil, err
	}

	return flow.NewExecutor(flows, modelRegistry, toolRegistry, flow.ExecutorConfig{
		MaxToolIterations: cfg.Flows.MaxToolIterations,
		GenerationTimeout: cfg.Flows.GenerationTimeout,
		DefaultModel:      cfg.Models.DefaultChat,
		VisionModel:       cfg.GetVisionModel(),
		Render: prompt.RenderOptions{
			ImageMaxWidth: cfg.ImageProcessing.MaxWidth,
			ImageQuality:  cfg.ImageProcessing.Quality,
		},
	}), nil
}
