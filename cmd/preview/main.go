// Command preview opens a local window showing one head-tracked viewport.
// It runs the full pipeline on this machine, or feeds poses from a NATS
// relay with -nats when the camera lives on another host.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/dgavriloff/go-portal/internal/config"
	"github.com/dgavriloff/go-portal/internal/log"
	"github.com/dgavriloff/go-portal/pkg/capture"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
	"github.com/dgavriloff/go-portal/pkg/headtrack/detection"
	"github.com/dgavriloff/go-portal/pkg/relay"
	"github.com/dgavriloff/go-portal/pkg/viewport"
)

type game struct {
	surface *viewport.ImageSurface
	frame   *ebiten.Image
	w, h    int
}

func (g *game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	img := g.surface.Latest()
	if img == nil {
		return
	}
	if g.frame == nil {
		g.frame = ebiten.NewImage(g.w, g.h)
	}
	g.frame.WritePixels(img.Pix)
	screen.DrawImage(g.frame, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.w, g.h
}

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	natsURL := flag.String("nats", "", "feed poses from a NATS relay instead of a local camera")
	model := flag.String("model", "", "wireframe model URL or path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Init("info")
		log.Error("config", "error", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	vc := cfg.Viewport[0]
	if *model != "" {
		vc.Model = *model
	}

	var broadcaster *headtrack.Broadcaster
	if *natsURL != "" {
		broadcaster = headtrack.New(cfg.Tracking.TrackingConfig(), nil, nil)
		r, err := relay.Connect(*natsURL, cfg.NATSSubject)
		if err != nil {
			log.Error("relay connect", "url", *natsURL, "error", err)
			os.Exit(1)
		}
		defer r.Close()
		if _, err := r.FeedInto(broadcaster); err != nil {
			log.Error("relay subscribe", "error", err)
			os.Exit(1)
		}
		log.Info("feeding poses from relay", "url", *natsURL)
	} else {
		source := capture.NewWebcam(cfg.Camera.CaptureConfig())
		detector := detection.NewFaceMesh(cfg.Detector.DetectionConfig())
		broadcaster = headtrack.New(cfg.Tracking.TrackingConfig(), source, detector)
		if err := broadcaster.Start(context.Background()); err != nil {
			log.Error("start tracking", "error", err)
			os.Exit(1)
		}
		defer broadcaster.Stop()
	}

	surface := viewport.NewImageSurface(vc.PixelWidth, vc.PixelHeight)
	vp := viewport.New(broadcaster, surface, vc.Options())
	defer vp.Dispose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go vp.Run(ctx)

	w, h := surface.Size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("go-portal preview")
	if err := ebiten.RunGame(&game{surface: surface, w: w, h: h}); err != nil {
		log.Error("preview window", "error", err)
		os.Exit(1)
	}
}
