// Command camcheck lists the cameras OpenCV can open, measures motion on one
// of them and saves a snapshot, to check a setup before playing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ayusman/panicpoppers/internal/capture"
	"github.com/ayusman/panicpoppers/internal/config"
	"github.com/ayusman/panicpoppers/internal/driver"
	"github.com/ayusman/panicpoppers/internal/game"
	"github.com/ayusman/panicpoppers/internal/logger"
	"github.com/ayusman/panicpoppers/internal/render/raster"
)

func main() {
	maxIndex := flag.Int("probe", 4, "number of camera indices to probe")
	device := flag.Int("device", -1, "camera to test; -1 picks the external camera if any")
	motionFor := flag.Duration("motion", 3*time.Second, "measure motion for this long; 0 skips")
	snapshot := flag.String("snapshot", "", "save one frame with a sample board as a PNG to this path")
	flag.Parse()

	logger.Init("info", false)
	log := logger.Get()

	devices := capture.Probe(*maxIndex)
	for _, d := range devices {
		fmt.Println(d)
	}

	index := *device
	if index < 0 {
		d, ok := capture.PickDevice(devices)
		if !ok {
			logger.Fatal("no readable camera found", "probed", *maxIndex)
		}
		index = d.Index
		log.Info("picked camera", "device", d.Index, "external", d.IsExternal())
	}

	cam := capture.NewCamera(capture.Config{DeviceID: index})
	if err := cam.Open(); err != nil {
		logger.Fatal("open camera", "device", index, "error", err)
	}

	err := check(cam, *motionFor, *snapshot)
	if cerr := cam.Close(); cerr != nil {
		log.Warn("close camera", "error", cerr)
	}
	if err != nil {
		logger.Fatal("camera check failed", "device", index, "error", err)
	}
	if *snapshot != "" {
		log.Info("snapshot saved", "path", *snapshot)
	}
}

// check runs the motion and snapshot steps. The caller owns the camera.
func check(cam capture.Camera, motionFor time.Duration, snapshot string) error {
	if motionFor > 0 {
		if err := measureMotion(cam, motionFor); err != nil {
			return fmt.Errorf("measure motion: %w", err)
		}
	}
	if snapshot != "" {
		if err := saveSnapshot(cam, snapshot); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
	}
	return nil
}

// measureMotion prints the share of changed pixels between frames so the
// user can see whether waving a hand registers.
func measureMotion(cam capture.Camera, d time.Duration) error {
	meter := capture.NewMotionMeter()
	defer meter.Close()

	interval := time.Second / time.Duration(cam.FPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	deadline := time.Now().Add(d)
	var peak float64
	for time.Now().Before(deadline) {
		<-ticker.C
		frame, err := cam.ReadFrame()
		if err != nil {
			return err
		}
		pct, ok := meter.Measure(frame)
		frame.Close()
		if ok && pct > peak {
			peak = pct
		}
	}

	fmt.Printf("peak motion: %.2f%% of pixels\n", peak)
	return nil
}

// saveSnapshot draws one camera frame under a sample board, so icon size,
// halo and HUD placement can be judged against the real picture.
func saveSnapshot(cam capture.Camera, path string) error {
	frame, err := cam.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	w, h := cam.Size()
	r := raster.New(w, h, raster.Options{Width: config.FrameWidth, Height: config.FrameHeight})
	if err := driver.Draw(r, sampleBoard(), frame); err != nil {
		return err
	}
	return r.SavePNG(path)
}

func sampleBoard() driver.Snapshot {
	preset, _ := config.LookupPreset(config.PresetPanic)
	rules := preset.Rules
	mid := game.Vec2{X: config.FrameWidth / 2, Y: config.FrameHeight / 2}

	return driver.Snapshot{
		Phase:  game.Playing,
		Bounds: game.Vec2{X: config.FrameWidth, Y: config.FrameHeight},
		Targets: []game.Target{
			{ID: 1, Pos: game.Vec2{X: mid.X - 120, Y: mid.Y}, Kind: game.Good, Tag: config.GoodFoods[0]},
			{ID: 2, Pos: game.Vec2{X: mid.X + 120, Y: mid.Y}, Kind: game.Bad, Tag: config.BadFoods[0]},
		},
		Fingertip:    mid,
		HasFingertip: true,
		Radius:       rules.ActivationRadius,
		Score:        rules.StartScore,
		Remaining:    rules.Duration,
	}
}
