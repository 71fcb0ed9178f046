package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/dudu/liptint/internal/camera"
	"github.com/dudu/liptint/internal/config"
	"github.com/dudu/liptint/internal/overlay"
	"github.com/dudu/liptint/internal/pipeline"
	"github.com/dudu/liptint/internal/provider"
	"github.com/dudu/liptint/internal/ui"

	apiserver "github.com/dudu/liptint/internal/api"
)

func init() {
	// Lock the main goroutine to the main OS thread.
	// Required on macOS for OpenCV's highgui (window creation).
	runtime.LockOSThread()
}

func main() {
	cfg := config.Load()

	flag.IntVar(&cfg.CameraIndex, "camera", cfg.CameraIndex, "Camera device index")
	flag.StringVar(&cfg.DetectorURL, "detector", cfg.DetectorURL, "Landmark detector websocket URL")
	flag.StringVar(&cfg.APIAddr, "api", cfg.APIAddr, "Style control API listen address")
	flag.StringVar(&cfg.Color, "color", cfg.Color, "Initial lip color (#RRGGBB)")
	flag.Float64Var(&cfg.Opacity, "opacity", cfg.Opacity, "Initial opacity (0-1)")
	flag.IntVar(&cfg.Blur, "blur", cfg.Blur, "Initial blur radius in pixels")
	flag.IntVar(&cfg.TargetFPS, "fps", cfg.TargetFPS, "Target frames per second")
	flag.BoolVar(&cfg.Preview, "preview", cfg.Preview, "Show preview window")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "liptint - virtual lipstick overlay for live video\n\n")
		fmt.Fprintf(os.Stderr, "Usage: liptint [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  liptint --color '#C2185B' --opacity 0.6\n")
		fmt.Fprintf(os.Stderr, "  liptint --detector ws://localhost:9021/landmarks --camera 1\n")
	}
	flag.Parse()

	setupLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("liptint exited")
	}
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func run(cfg *config.Config) error {
	color, err := overlay.ParseHexColor(cfg.Color)
	if err != nil {
		return fmt.Errorf("initial color: %w", err)
	}

	ctrl := pipeline.NewController(overlay.Style{
		Color:      color,
		Opacity:    cfg.Opacity,
		BlurRadius: cfg.Blur,
		Enabled:    cfg.Enabled,
	}, log.With().Str("component", "pipeline").Logger())
	defer ctrl.Close()

	client := provider.NewClient(cfg.DetectorURL, log.With().Str("component", "detector").Logger())
	if err := client.Connect(); err != nil {
		// Keep running; Detect redials and the controller stays
		// disabled until the sidecar comes up.
		log.Warn().Err(err).Msg("detector not reachable yet")
		ctrl.SetAvailable(false)
	}
	defer client.Close()

	// The render loop only needs the detection contract.
	var detector pipeline.Detector = client

	log.Info().Int("device", cfg.CameraIndex).Msg("opening camera")
	cam, err := camera.Open(cfg.CameraIndex, cfg.FrameWidth, cfg.FrameHeight, cfg.TargetFPS)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer cam.Close()
	log.Info().Int("width", cam.Width()).Int("height", cam.Height()).Msg("camera opened")

	server := apiserver.NewServer(cfg.APIAddr, ctrl, client,
		log.With().Str("component", "api").Logger())
	server.Start()
	defer server.Shutdown()

	var window *ui.Window
	if cfg.Preview {
		window = ui.NewWindow("liptint")
		defer window.Close()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	frame := gocv.NewMat()
	defer frame.Close()

	log.Info().Msg("running, press q to quit")

	for {
		select {
		case <-sigChan:
			log.Info().Msg("shutting down")
			return nil
		default:
		}

		if !cam.Read(&frame) || frame.Empty() {
			continue
		}

		if detector.Paused() {
			// Detection suspended: keep the last overlay on screen.
			ctrl.RenderHeld(&frame)
		} else {
			result, err := detector.Detect(frame)
			if err != nil {
				ctrl.SetAvailable(false)
				log.Debug().Err(err).Msg("detector unavailable")
			} else {
				ctrl.SetAvailable(true)
				ctrl.OnResult(result, &frame)
			}
		}

		if window != nil {
			window.Show(&frame)
			// WaitKey pumps window events; required on macOS.
			key := window.WaitKey(1)
			if key == 'q' || key == 27 {
				log.Info().Msg("quitting")
				return nil
			}
		}
	}
}
