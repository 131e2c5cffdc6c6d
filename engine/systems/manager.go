package systems

import (
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/anima-ui/engine/assets"
)

type SystemManagerConfig struct {
	// AssetsDir is watched by the asset manager. Empty disables asset loading.
	AssetsDir       string
	JobWorkers      int
	JobQueueSize    int
	MaxTextureCount uint32
	MaxFontCount    int
	DefaultFont     string
}

type SystemManager struct {
	config        *SystemManagerConfig
	assetManager  *assets.AssetManager
	jobSystem     *JobSystem
	textureSystem *TextureSystem
	fontSystem    *FontSystem
}

func NewSystemManager(config *SystemManagerConfig, renderer TextureBackend, am *assets.AssetManager) (*SystemManager, error) {
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}

	texturesDir := ""
	if config.AssetsDir != "" {
		texturesDir = filepath.Join(config.AssetsDir, "textures")
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: config.MaxTextureCount,
		TexturesDir:     texturesDir,
	}, js, am, renderer)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	fs, err := NewFontSystem(&FontSystemConfig{
		DefaultBitmapFont:  config.DefaultFont,
		MaxBitmapFontCount: config.MaxFontCount,
	}, am, ts)
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}

	return &SystemManager{
		config:        config,
		assetManager:  am,
		jobSystem:     js,
		textureSystem: ts,
		fontSystem:    fs,
	}, nil
}

// Initialize starts the asset manager and the systems depending on it, in order.
func (sm *SystemManager) Initialize() error {
	if sm.config.AssetsDir != "" {
		if sm.assetManager == nil {
			return fmt.Errorf("assets dir %s set without an asset manager", sm.config.AssetsDir)
		}
		if err := sm.assetManager.Initialize(sm.config.AssetsDir); err != nil {
			return fmt.Errorf("watch assets %s: %w", sm.config.AssetsDir, err)
		}
	}
	if err := sm.textureSystem.Initialize(); err != nil {
		return err
	}
	if err := sm.fontSystem.Initialize(); err != nil {
		return err
	}
	return nil
}

// Update applies the work finished off the frame thread since the last frame.
func (sm *SystemManager) Update() error {
	return sm.textureSystem.Update()
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.jobSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.fontSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.textureSystem.Shutdown(); err != nil {
		return err
	}
	if sm.assetManager != nil {
		if err := sm.assetManager.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (sm *SystemManager) TextureSystem() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) FontSystem() *FontSystem {
	return sm.fontSystem
}

func (sm *SystemManager) JobSystem() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) AssetManager() *assets.AssetManager {
	return sm.assetManager
}
