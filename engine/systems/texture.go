package systems

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-ui/engine/assets"
	"github.com/spaghettifunk/anima-ui/engine/assets/loaders"
	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

// TextureBackend is the part of the renderer the texture system uploads to.
type TextureBackend interface {
	TextureCreate(img image.Image) (texture.ID, error)
	TextureReplace(id texture.ID, img image.Image) error
	TextureDestroy(id texture.ID) error
	TextureCreateWriteable(width, height uint32) (texture.ID, error)
	TextureWriteData(id texture.ID, x, y int, img image.Image) error
}

// ErrTextureNameTaken is returned when a file would load under the name of a
// texture that came from another file or was generated.
var ErrTextureNameTaken = errors.New("texture name already in use")

var whitePixel = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Image assets below this directory are loaded in the background on Initialize. Empty disables preloading. */
	TexturesDir string
}

type TextureSystem struct {
	Config *TextureSystemConfig

	defaultTexture *metadata.Texture
	whiteTexture   *metadata.Texture
	// Registered textures by name.
	registeredTextures map[string]*metadata.Texture
	// Hashtable for texture references.
	registeredTextureTable map[string]*metadata.TextureReference

	// decoded by the job system, waiting for Update to upload them
	loadedMutex sync.Mutex
	loaded      []*metadata.Resource

	// sub systems
	jobSystem    *JobSystem
	assetManager *assets.AssetManager
	renderer     TextureBackend
}

func NewTextureSystem(config *TextureSystemConfig, js *JobSystem, am *assets.AssetManager, r TextureBackend) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError("%s", err)
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("func NewTextureSystem - a renderer is required")
	}

	return &TextureSystem{
		Config:                 config,
		registeredTextures:     make(map[string]*metadata.Texture),
		registeredTextureTable: make(map[string]*metadata.TextureReference),
		jobSystem:              js,
		assetManager:           am,
		renderer:               r,
	}, nil
}

// Initialize uploads the default textures and queues the preload of the
// textures directory.
func (ts *TextureSystem) Initialize() error {
	var err error
	ts.defaultTexture, err = ts.createGenerated(metadata.DEFAULT_TEXTURE_NAME, metadata.CreateCheckerboard(256, 32))
	if err != nil {
		return fmt.Errorf("create default texture: %w", err)
	}
	ts.whiteTexture, err = ts.createGenerated(metadata.DEFAULT_WHITE_TEXTURE_NAME, metadata.CreateSolid(16, 16, whitePixel))
	if err != nil {
		return fmt.Errorf("create default white texture: %w", err)
	}

	if ts.Config.TexturesDir == "" || ts.assetManager == nil {
		return nil
	}
	dir := filepath.Clean(ts.Config.TexturesDir)
	for _, a := range ts.assetManager.Assets(metadata.ResourceTypeImage) {
		if !isBelow(dir, a.Path) {
			continue
		}
		if err := ts.LoadAsync(a.Path); err != nil {
			return err
		}
	}
	return nil
}

func (ts *TextureSystem) Shutdown() error {
	// Destroy all loaded textures, the defaults included.
	for name, t := range ts.registeredTextures {
		if err := ts.renderer.TextureDestroy(t.ID); err != nil {
			core.LogWarn("texture '%s' destroy: %s", name, err)
		}
	}
	clear(ts.registeredTextures)
	clear(ts.registeredTextureTable)
	ts.defaultTexture = nil
	ts.whiteTexture = nil
	return nil
}

/**
 * @brief Acquires the texture with the given name and increments its reference count.
 * A texture that is not registered yet is loaded from the indexed image assets.
 * If autoRelease is set, the texture is destroyed once its last reference is released.
 */
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (texture.ID, error) {
	name = strings.ToLower(name)
	if name == metadata.DEFAULT_TEXTURE_NAME || name == metadata.DEFAULT_WHITE_TEXTURE_NAME {
		core.LogWarn("texture system Acquire called for default texture '%s'. Use DefaultTexture/WhiteTexture instead", name)
		t, ok := ts.registeredTextures[name]
		if !ok {
			return 0, fmt.Errorf("acquire texture '%s': %w", name, texture.ErrTextureNotFound)
		}
		return t.ID, nil
	}

	t, ok := ts.registeredTextures[name]
	if !ok {
		path, found := ts.findAsset(name)
		if !found {
			return 0, fmt.Errorf("acquire texture '%s': %w", name, texture.ErrTextureNotFound)
		}
		var err error
		if t, err = ts.Load(path); err != nil {
			return 0, fmt.Errorf("acquire texture '%s': %w", name, err)
		}
	}

	ref := ts.reference(name)
	if ref.ReferenceCount == 0 {
		ref.AutoRelease = autoRelease
	}
	ref.ReferenceCount++
	return t.ID, nil
}

/**
 * @brief Releases a reference to the texture with the given name. Releasing the
 * last reference of an auto release texture destroys it.
 */
func (ts *TextureSystem) Release(name string) error {
	name = strings.ToLower(name)
	if name == metadata.DEFAULT_TEXTURE_NAME || name == metadata.DEFAULT_WHITE_TEXTURE_NAME {
		return nil
	}
	ref, ok := ts.registeredTextureTable[name]
	if !ok || ref.ReferenceCount == 0 {
		return fmt.Errorf("release texture '%s': %w", name, texture.ErrTextureNotFound)
	}
	ref.ReferenceCount--
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		return ts.destroy(name)
	}
	return nil
}

func (ts *TextureSystem) Get(name string) (*metadata.Texture, bool) {
	t, ok := ts.registeredTextures[strings.ToLower(name)]
	return t, ok
}

// Resolve looks a texture up without taking a reference, in the shape
// ui.NewDeferredImage takes.
func (ts *TextureSystem) Resolve(name string) (texture.ID, error) {
	t, ok := ts.Get(name)
	if !ok {
		return 0, fmt.Errorf("texture '%s': %w", name, texture.ErrTextureNotFound)
	}
	return t.ID, nil
}

func (ts *TextureSystem) DefaultTexture() *metadata.Texture {
	return ts.defaultTexture
}

func (ts *TextureSystem) WhiteTexture() *metadata.Texture {
	return ts.whiteTexture
}

// Count returns the number of registered textures, the defaults included.
func (ts *TextureSystem) Count() int {
	return len(ts.registeredTextures)
}

// Load decodes the image at path and uploads it. Loading a name that is
// already registered replaces its pixels and keeps its id.
func (ts *TextureSystem) Load(path string) (*metadata.Texture, error) {
	res, err := ts.loadResource(path)
	if err != nil {
		return nil, err
	}
	return ts.apply(res)
}

// LoadAsync decodes the image at path on the job system. The upload
// happens on the next Update.
func (ts *TextureSystem) LoadAsync(path string) error {
	if ts.jobSystem == nil {
		_, err := ts.Load(path)
		return err
	}
	return ts.jobSystem.Submit(metadata.JobTask{
		InputParams: path,
		OnStart: func(params interface{}) (interface{}, error) {
			return ts.loadResource(params.(string))
		},
		OnComplete: func(result interface{}) {
			ts.loadedMutex.Lock()
			ts.loaded = append(ts.loaded, result.(*metadata.Resource))
			ts.loadedMutex.Unlock()
		},
		OnFailure: func(err error) {
			core.LogError("texture load %s: %s", path, err)
		},
	})
}

/**
 * @brief Updates the texture system. Should happen once an update cycle, on the frame thread.
 * Uploads the textures decoded in the background and reacts to changes on disk.
 */
func (ts *TextureSystem) Update() error {
	ts.loadedMutex.Lock()
	loaded := ts.loaded
	ts.loaded = nil
	ts.loadedMutex.Unlock()

	for _, res := range loaded {
		if _, err := ts.apply(res); err != nil {
			core.LogError("texture upload %s: %s", res.FullPath, err)
		}
	}

	if ts.assetManager == nil {
		return nil
	}
	for _, e := range ts.assetManager.PollEvents() {
		if e.Type != metadata.ResourceTypeImage {
			continue
		}
		name := loaders.TextureName(e.Path)
		switch e.Op {
		case assets.AssetChanged:
			if _, known := ts.registeredTextures[name]; !known && !ts.preloads(e.Path) {
				continue
			}
			core.LogDebug("texture '%s' changed on disk, reloading", name)
			if err := ts.LoadAsync(e.Path); err != nil {
				return err
			}
		case assets.AssetRemoved:
			t, known := ts.registeredTextures[name]
			if !known || t.FullPath != e.Path {
				continue
			}
			if ref, ok := ts.registeredTextureTable[name]; ok && ref.ReferenceCount > 0 {
				core.LogWarn("texture '%s' was removed from disk but is still referenced", name)
				continue
			}
			if err := ts.destroy(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateWriteable allocates an empty texture the caller fills with
// WriteData. The texture gets a generated unique name and is never auto released.
func (ts *TextureSystem) CreateWriteable(width, height uint32) (*metadata.Texture, error) {
	if err := ts.checkCapacity(); err != nil {
		return nil, err
	}
	id, err := ts.renderer.TextureCreateWriteable(width, height)
	if err != nil {
		return nil, err
	}
	t := &metadata.Texture{
		ID:     id,
		Width:  width,
		Height: height,
		Flags: metadata.TextureFlagBits(metadata.TextureFlagIsWriteable) |
			metadata.TextureFlagBits(metadata.TextureFlagIsGenerated) |
			metadata.TextureFlagBits(metadata.TextureFlagHasTransparency),
		Generation: metadata.InvalidGeneration,
		Name:       uuid.New().String(),
	}
	ts.registeredTextures[t.Name] = t
	ts.registeredTextureTable[t.Name] = &metadata.TextureReference{ReferenceCount: 1, Handle: id}
	return t, nil
}

// WriteData copies img into the writeable texture name at (x, y).
func (ts *TextureSystem) WriteData(name string, x, y int, img image.Image) error {
	t, ok := ts.Get(name)
	if !ok {
		return fmt.Errorf("write texture '%s': %w", name, texture.ErrTextureNotFound)
	}
	if !t.Flags.Has(metadata.TextureFlagIsWriteable) {
		return fmt.Errorf("write texture '%s': texture is not writeable", name)
	}
	if err := ts.renderer.TextureWriteData(t.ID, x, y, img); err != nil {
		return err
	}
	t.Generation++
	return nil
}

func (ts *TextureSystem) loadResource(path string) (*metadata.Resource, error) {
	if ts.assetManager == nil {
		return nil, fmt.Errorf("load texture %s: no asset manager", path)
	}
	return ts.assetManager.Load(metadata.ResourceTypeImage, path, nil)
}

// apply uploads a decoded image resource. Must run on the frame thread.
func (ts *TextureSystem) apply(res *metadata.Resource) (*metadata.Texture, error) {
	defer func() {
		if ts.assetManager == nil {
			return
		}
		if err := ts.assetManager.UnloadAsset(res); err != nil {
			core.LogWarn("unload %s: %s", res.FullPath, err)
		}
	}()

	data, ok := res.Data.(*loaders.TextureResourceData)
	if !ok {
		return nil, fmt.Errorf("resource %s is not a texture", res.FullPath)
	}
	img := data.Image
	size := img.Bounds().Size()

	var flags metadata.TextureFlagBits
	if o, ok := img.(interface{ Opaque() bool }); !ok || !o.Opaque() {
		flags |= metadata.TextureFlagBits(metadata.TextureFlagHasTransparency)
	}

	if t, ok := ts.registeredTextures[res.Name]; ok {
		if t.FullPath == "" || filepath.Clean(t.FullPath) != filepath.Clean(res.FullPath) {
			return nil, fmt.Errorf("%s as '%s': %w", res.FullPath, res.Name, ErrTextureNameTaken)
		}
		if err := ts.renderer.TextureReplace(t.ID, img); err != nil {
			return nil, err
		}
		t.Width = uint32(size.X)
		t.Height = uint32(size.Y)
		t.Flags = flags
		t.FullPath = res.FullPath
		t.Generation++
		return t, nil
	}

	if err := ts.checkCapacity(); err != nil {
		return nil, err
	}
	id, err := ts.renderer.TextureCreate(img)
	if err != nil {
		return nil, err
	}
	t := &metadata.Texture{
		ID:       id,
		Width:    uint32(size.X),
		Height:   uint32(size.Y),
		Flags:    flags,
		Name:     res.Name,
		FullPath: res.FullPath,
	}
	ts.registeredTextures[t.Name] = t
	core.LogDebug("texture '%s' loaded as %s", t.Name, t.ID)
	return t, nil
}

func (ts *TextureSystem) createGenerated(name string, img image.Image) (*metadata.Texture, error) {
	id, err := ts.renderer.TextureCreate(img)
	if err != nil {
		return nil, err
	}
	size := img.Bounds().Size()
	t := &metadata.Texture{
		ID:     id,
		Width:  uint32(size.X),
		Height: uint32(size.Y),
		Flags:  metadata.TextureFlagBits(metadata.TextureFlagIsGenerated),
		Name:   name,
	}
	ts.registeredTextures[name] = t
	return t, nil
}

func (ts *TextureSystem) destroy(name string) error {
	t, ok := ts.registeredTextures[name]
	if !ok {
		return fmt.Errorf("destroy texture '%s': %w", name, texture.ErrTextureNotFound)
	}
	delete(ts.registeredTextures, name)
	delete(ts.registeredTextureTable, name)
	return ts.renderer.TextureDestroy(t.ID)
}

func (ts *TextureSystem) reference(name string) *metadata.TextureReference {
	ref, ok := ts.registeredTextureTable[name]
	if !ok {
		ref = &metadata.TextureReference{Handle: ts.registeredTextures[name].ID}
		ts.registeredTextureTable[name] = ref
	}
	return ref
}

func (ts *TextureSystem) checkCapacity() error {
	if uint32(len(ts.registeredTextures)) >= ts.Config.MaxTextureCount {
		return fmt.Errorf("no space left to register a new texture, maximum is %d: %w", ts.Config.MaxTextureCount, texture.ErrCapacityExceeded)
	}
	return nil
}

func (ts *TextureSystem) findAsset(name string) (string, bool) {
	if ts.assetManager == nil {
		return "", false
	}
	for _, a := range ts.assetManager.Assets(metadata.ResourceTypeImage) {
		if loaders.TextureName(a.Path) == name {
			return a.Path, true
		}
	}
	return "", false
}

func (ts *TextureSystem) preloads(path string) bool {
	return ts.Config.TexturesDir != "" && isBelow(filepath.Clean(ts.Config.TexturesDir), path)
}

func isBelow(dir, path string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
