package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/app"
	"github.com/ayusman/saiyan/internal/capture"
	"github.com/ayusman/saiyan/internal/detector"
	"github.com/ayusman/saiyan/internal/server"
	"github.com/ayusman/saiyan/internal/store"
	"github.com/ayusman/saiyan/internal/tray"
)

func main() {
	var (
		cameraID = flag.Int("camera", 0, "camera device id")
		width    = flag.Int("width", capture.DefaultWidth, "requested frame width")
		height   = flag.Int("height", capture.DefaultHeight, "requested frame height")
		addr     = flag.String("addr", ":8080", "HTTP listen address")
		assets   = flag.String("assets", "assets/power_ball.png,assets/energy.png", "comma separated energy ball images, first that loads wins")
		dataDir  = flag.String("data", "", "data directory (default ~/.saiyan)")
		demo     = flag.Bool("demo", false, "play a scripted gesture loop on a blank frame instead of the camera")
		headless = flag.Bool("headless", false, "run without the system tray")
		seed     = flag.Int64("seed", 0, "random seed for the effects (0 uses the clock)")
	)
	flag.Parse()

	fmt.Println("Saiyan - AR energy effects")
	fmt.Printf("OpenCV %s, GoCV %s\n", gocv.OpenCVVersion(), gocv.Version())

	dir, err := resolveDataDir(*dataDir)
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dir, "saiyan.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	config := app.DefaultConfig()
	config.Store = st
	config.Seed = *seed
	config.AssetPaths = splitPaths(*assets)

	if *demo {
		cam, frame := capture.NewBlankCamera(*width, *height)
		defer frame.Close()
		config.Camera = cam
		config.Detector = detector.NewScriptedDetector(detector.DemoScript())
		fmt.Println("Demo mode: scripted gestures on a blank frame")
	} else {
		camConfig := capture.DefaultConfig()
		camConfig.DeviceID = *cameraID
		camConfig.Width, camConfig.Height = *width, *height
		config.Camera = capture.NewCamera(camConfig)
	}

	application := app.New(config)
	defer application.Close()

	if err := application.LoadSettings(); err != nil {
		log.Printf("Using default settings: %v", err)
	}
	if err := application.Start(); err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	// Find web directory
	webDir := findWebDir(dir)
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Frames:    application,
		States:    application,
		Tuner:     application,
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(quit) }) }

	if *headless {
		waitForSignal(quit, stop)
	} else {
		t := tray.New()
		t.OnToggle(application.SetEnabled)
		t.OnPreview(func() { openBrowser(previewURL(*addr)) })
		t.OnQuit(stop)
		application.OnGesture(t.SetLastGesture)

		go waitForSignal(quit, stop)
		go func() {
			<-quit
			t.Quit()
		}()

		// The tray needs the main thread on macOS
		t.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	application.Stop()
	fmt.Println("Bye")
}

// waitForSignal blocks until SIGINT or SIGTERM, which calls stop, or until
// quit is closed elsewhere.
func waitForSignal(quit <-chan struct{}, stop func()) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
		stop()
	case <-quit:
	}
}

// resolveDataDir returns dir, or ~/.saiyan when empty, creating it.
func resolveDataDir(dir string) (string, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "can't find home directory")
		}
		dir = filepath.Join(home, ".saiyan")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func splitPaths(list string) []string {
	var paths []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}

func previewURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/api/stream"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
