// Package config provides configuration for go-portal commands: a TOML
// file for structure (camera, detector, viewport list) with environment
// variable overrides for deploy-time knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dgavriloff/go-portal/pkg/capture"
	"github.com/dgavriloff/go-portal/pkg/headtrack"
	"github.com/dgavriloff/go-portal/pkg/headtrack/detection"
	"github.com/dgavriloff/go-portal/pkg/viewport"
)

// Config is the root configuration document.
type Config struct {
	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`

	// NATSURL enables the pose relay when set.
	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`

	Camera   Camera     `toml:"camera"`
	Detector Detector   `toml:"detector"`
	Tracking Tracking   `toml:"tracking"`
	Viewport []Viewport `toml:"viewport"`
}

// Camera selects and configures the capture device.
type Camera struct {
	Device int `toml:"device"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
	FPS    int `toml:"fps"`
}

// Detector points at the landmark model files.
type Detector struct {
	FaceModel string `toml:"face_model"`
	MeshModel string `toml:"mesh_model"`
}

// Tracking tunes the head tracker.
type Tracking struct {
	DetectionFPS int     `toml:"detection_fps"`
	ReadySeconds int     `toml:"ready_seconds"`
	BaseDistance float64 `toml:"base_distance"`
}

// Viewport configures one rendered window.
type Viewport struct {
	Name         string  `toml:"name"`
	Model        string  `toml:"model"` // URL or path, optional
	PixelWidth   int     `toml:"pixel_width"`
	PixelHeight  int     `toml:"pixel_height"`
	Width        float64 `toml:"width"`
	Depth        float64 `toml:"depth"`
	SensitivityX float64 `toml:"sensitivity_x"`
	SensitivityY float64 `toml:"sensitivity_y"`
	Smoothing    float64 `toml:"smoothing"`
	BaseDistance float64 `toml:"base_distance"`
}

// Default returns the configuration used when no file is given: one
// viewport on the default camera.
func Default() Config {
	return Config{
		Port:     "8090",
		LogLevel: "info",
		Camera:   Camera{Device: 0, Width: 640, Height: 480, FPS: 30},
		Detector: Detector{
			FaceModel: "models/face_detection_yunet.onnx",
			MeshModel: "models/face_mesh.onnx",
		},
		Viewport: []Viewport{{Name: "main"}},
	}
}

// Load reads the configuration file (if path is non-empty) on top of the
// defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if len(cfg.Viewport) == 0 {
		cfg.Viewport = []Viewport{{Name: "main"}}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers PORTAL_* environment variables over the file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORTAL_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("PORTAL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PORTAL_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("PORTAL_CAMERA_DEVICE"); v != "" {
		if dev, err := strconv.Atoi(v); err == nil {
			cfg.Camera.Device = dev
		}
	}
}

// CaptureConfig converts to the capture package's config.
func (c Camera) CaptureConfig() capture.Config {
	out := capture.DefaultConfig()
	out.Device = c.Device
	if c.Width > 0 {
		out.Width = c.Width
	}
	if c.Height > 0 {
		out.Height = c.Height
	}
	if c.FPS > 0 {
		out.FPS = c.FPS
	}
	return out
}

// DetectionConfig converts to the detection package's config.
func (d Detector) DetectionConfig() detection.Config {
	out := detection.DefaultConfig()
	if d.FaceModel != "" {
		out.FaceModelPath = d.FaceModel
	}
	if d.MeshModel != "" {
		out.MeshModelPath = d.MeshModel
	}
	return out
}

// TrackingConfig converts to the headtrack package's config.
func (t Tracking) TrackingConfig() headtrack.Config {
	out := headtrack.DefaultConfig()
	if t.DetectionFPS > 0 {
		out.DetectionInterval = time.Second / time.Duration(t.DetectionFPS)
	}
	if t.ReadySeconds > 0 {
		out.ReadyTimeout = time.Duration(t.ReadySeconds) * time.Second
	}
	if t.BaseDistance > 0 {
		out.BaseDistance = t.BaseDistance
	}
	return out
}

// Options converts to viewport options.
func (v Viewport) Options() viewport.Options {
	return viewport.Options{
		Name:         v.Name,
		ContentRef:   v.Model,
		PixelWidth:   v.PixelWidth,
		PixelHeight:  v.PixelHeight,
		Width:        v.Width,
		Depth:        v.Depth,
		SensitivityX: v.SensitivityX,
		SensitivityY: v.SensitivityY,
		Smoothing:    v.Smoothing,
		BaseDistance: v.BaseDistance,
	}
}
