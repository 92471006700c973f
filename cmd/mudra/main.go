package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "HTTP listen address")
		cameraID = flag.Int("camera", 0, "camera device ID")
		noTray   = flag.Bool("no-tray", false, "run without the system tray")
	)
	flag.Parse()

	fmt.Println("Mudra - Camera Gesture Detection")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dataDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(dataDir, "mudra.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	sensitivity := 0.0
	if raw, err := st.GetSetting("sensitivity"); err == nil {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			sensitivity = v
		}
	}

	a := app.New(app.Config{
		Store:       st,
		CameraID:    *cameraID,
		HookDir:     filepath.Join(dataDir, "hooks"),
		Sensitivity: sensitivity,
	})
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Pipeline:  a,
		Camera:    a.Camera(),
	})

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if *noTray {
		select {}
	}

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnRecalibrate(a.Recalibrate)
	t.OnQuit(a.Stop)

	events, cancel := a.Subscribe()
	defer cancel()
	go func() {
		for ev := range events {
			// Aim arrives every frame while a pose holds; showing it
			// would mask the last discrete gesture.
			if ev.Type == event.Aim {
				continue
			}
			t.SetLastEvent(string(ev.Type))
		}
	}()

	t.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
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

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
