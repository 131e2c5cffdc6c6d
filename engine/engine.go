package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/anima-ui/engine/assets"
	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/systems"
	"github.com/spaghettifunk/anima-ui/engine/ui"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     atomic.Bool
	// set by Stop, survives until Run has returned
	stopRequested atomic.Bool
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.FrameMetrics
	lastTime      float64
	frameCount    uint64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine requires a game with an application config")
	}
	cfg := g.ApplicationConfig
	if err := cfg.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	core.SetLogLevel(cfg.LogLevel)

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
		width:        cfg.StartWidth,
		height:       cfg.StartHeight,
	}

	repeat, _ := metadata.ParseTextureRepeat(cfg.TextureRepeat)
	r, err := renderer.New(renderer.RendererConfig{
		Type:        renderer.Software,
		ClearColor:  math.Vec4FromArray(cfg.ClearColor),
		ItemSpacing: math.Vec2FromArray(cfg.ItemSpacing),
		Padding:     math.Vec2FromArray(cfg.Padding),
		Repeat:      repeat,
	})
	if err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	e.renderer = r

	if cfg.AssetsDir != "" {
		am, err := assets.NewAssetManager(cfg.AssetEventQueueSize)
		if err != nil {
			core.LogError("%s", err)
			return nil, err
		}
		e.assetManager = am
	}

	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		AssetsDir:       cfg.AssetsDir,
		JobWorkers:      cfg.JobWorkers,
		JobQueueSize:    cfg.JobWorkers * 16,
		MaxTextureCount: cfg.MaxTextureCount,
		MaxFontCount:    cfg.MaxFontCount,
		DefaultFont:     cfg.FontName,
	}, r, e.assetManager)
	if err != nil {
		core.LogError("%s", err)
		if e.assetManager != nil {
			_ = e.assetManager.Close()
		}
		return nil, err
	}
	e.systemManager = sm
	g.SystemManager = sm

	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine cannot be initialized in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	cfg := e.gameInstance.ApplicationConfig
	if err := e.renderer.Initialize(cfg.Name, e.width, e.height); err != nil {
		core.LogError("renderer failed to initialize: %s", err)
		return err
	}
	if err := e.systemManager.Initialize(); err != nil {
		core.LogError("systems failed to initialize: %s", err)
		return err
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game failed to initialize: %s", err)
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Run drives the frame loop until Stop is called or the configured number
// of frames has been drawn.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	defer func() {
		e.isRunning.Store(false)
		e.stopRequested.Store(false)
	}()

	cfg := e.gameInstance.ApplicationConfig
	var targetFrameSeconds float64
	if cfg.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / cfg.TargetFPS
	}

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for !e.stopRequested.Load() {
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := time.Now()

		if err := e.systemManager.Update(); err != nil {
			core.LogError("systems update failed, shutting down: %s", err)
			return err
		}

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}

		err := e.renderer.DrawFrame(delta, func(frame ui.Frame) error {
			if e.gameInstance.FnRender == nil {
				return nil
			}
			return e.gameInstance.FnRender(frame, delta)
		})
		if err != nil {
			core.LogError("game render failed, shutting down: %s", err)
			return err
		}
		e.frameCount++

		frameElapsedTime := time.Since(frameStartTime).Seconds()
		e.metrics.Update(frameElapsedTime)
		if remainingSeconds := targetFrameSeconds - frameElapsedTime; remainingSeconds > 0 {
			time.Sleep(time.Duration(remainingSeconds * float64(time.Second)))
		}

		e.lastTime = currentTime

		if cfg.MaxFrames > 0 && e.frameCount >= cfg.MaxFrames {
			break
		}
	}

	fps, ms := e.metrics.Frame()
	core.LogInfo("stopped after %d frames (%.0f fps, %.3f ms/frame)", e.frameCount, fps, ms)

	if cfg.OutputPath != "" && e.frameCount > 0 {
		if err := e.renderer.SavePNG(cfg.OutputPath); err != nil {
			return fmt.Errorf("save frame: %w", err)
		}
		core.LogInfo("last frame written to %s", cfg.OutputPath)
	}
	e.currentStage = EngineStageInitialized
	return nil
}

// Stop ends the frame loop after the current frame. Safe to call from any
// goroutine. A Stop issued before Run makes Run return without drawing.
func (e *Engine) Stop() {
	e.stopRequested.Store(true)
}

func (e *Engine) IsRunning() bool {
	return e.isRunning.Load()
}

func (e *Engine) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("invalid canvas size %dx%d", width, height)
	}
	if width == e.width && height == e.height {
		return nil
	}
	core.LogDebug("canvas resize: %d, %d", width, height)
	if err := e.renderer.OnResize(width, height); err != nil {
		return err
	}
	e.width, e.height = width, height
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}

func (e *Engine) Shutdown() error {
	e.Stop()
	e.currentStage = EngineStageShuttingDown
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		return err
	}
	if err := e.renderer.Shutdown(); err != nil {
		return err
	}
	e.currentStage = EngineStageUninitialized
	return nil
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Metrics() *core.FrameMetrics {
	return e.metrics
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}
