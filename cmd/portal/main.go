package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgavriloff/go-portal/internal/config"
	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/capture"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
	"github.com/dgavriloff/go-portal/pkg/headtrack/detection"
	"github.com/dgavriloff/go-portal/pkg/relay"
	"github.com/dgavriloff/go-portal/pkg/viewport"
	"github.com/dgavriloff/go-portal/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	port := flag.String("port", "", "HTTP port (overrides config)")
	natsURL := flag.String("nats", "", "NATS server URL for pose relay (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Init("info")
		log.Error("config", "error", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *natsURL != "" {
		cfg.NATSURL = *natsURL
	}
	log.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source := capture.NewWebcam(cfg.Camera.CaptureConfig())
	detector := detection.NewFaceMesh(cfg.Detector.DetectionConfig())
	broadcaster := headtrack.New(cfg.Tracking.TrackingConfig(), source, detector)

	if err := broadcaster.Start(ctx); err != nil {
		log.Error("start tracking", "error", err)
		os.Exit(1)
	}
	defer broadcaster.Stop()

	server := web.NewServer(cfg.Port, broadcaster)

	var viewports []*viewport.Viewport
	for _, vc := range cfg.Viewport {
		surface := viewport.NewImageSurface(vc.PixelWidth, vc.PixelHeight)
		vp := viewport.New(broadcaster, surface, vc.Options())
		server.AttachViewport(vp, surface)
		viewports = append(viewports, vp)
		go vp.Run(ctx)
	}
	defer func() {
		for _, vp := range viewports {
			vp.Dispose()
		}
	}()

	if cfg.NATSURL != "" {
		r, err := relay.Connect(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			log.Error("relay connect", "url", cfg.NATSURL, "error", err)
			os.Exit(1)
		}
		defer r.Close()
		defer r.PublishFrom(broadcaster)()
		log.Info("pose relay connected", "url", cfg.NATSURL, "subject", r.Subject())
	}

	server.StartAsync()

	<-ctx.Done()
	log.Info("shutting down")
	if err := server.Shutdown(); err != nil {
		log.Warn("shutdown", "error", err)
	}
}
