package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-ui/engine/assets/loaders"
	"github.com/spaghettifunk/anima-ui/engine/containers"
	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
)

var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetOp int

const (
	// AssetChanged is sent when a file was created or written.
	AssetChanged AssetOp = iota
	// AssetRemoved is sent when a file was deleted or renamed away.
	AssetRemoved
)

// AssetEvent describes a change on disk. Events are queued by the watcher
// goroutine and consumed on the frame thread with PollEvents.
type AssetEvent struct {
	Path string
	Type metadata.ResourceType
	Op   AssetOp
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]loaders.ResourceLoader

	mutex sync.RWMutex

	pendingMutex sync.Mutex
	pending      *containers.RingQueue[AssetEvent]

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	started  bool
	isClosed bool
}

// NewAssetManager creates a manager whose pending event queue holds at most
// queueSize events. Events arriving on a full queue are dropped.
func NewAssetManager(queueSize int) (*AssetManager, error) {
	if queueSize <= 0 {
		return nil, fmt.Errorf("asset event queue size must be > 0, got %d", queueSize)
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]loaders.ResourceLoader),
		pending:  containers.NewRingQueue[AssetEvent](queueSize),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	// Register loaders
	am.RegisterLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})
	am.RegisterLoader(metadata.ResourceTypeBitmapFont, &loaders.BitmapFontLoader{ResourcePath: assetsDir})

	if err := am.watchRecursive(assetsDir, false); err != nil {
		return err
	}

	am.mutex.Lock()
	am.started = true
	am.mutex.Unlock()
	go am.start()
	return nil
}

// Close stops watching the file system. It is safe to call more than once.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	started := am.started
	am.mutex.Unlock()

	if !started {
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

// RegisterLoader registers the loader used for an asset type.
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader loaders.ResourceLoader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.loaders[assetType] = loader
}

// Assets returns a snapshot of the indexed assets of the given type, sorted by path.
func (am *AssetManager) Assets(assetType metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		if a.Type == assetType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LoadAsset loads an indexed asset with the loader registered for its type.
func (am *AssetManager) LoadAsset(path string, params interface{}) (*metadata.Resource, error) {
	am.mutex.Lock()
	asset, exists := am.assets[path]
	if !exists {
		am.mutex.Unlock()
		return nil, fmt.Errorf("asset not found: %s", path)
	}
	// Load or reload asset from disk if necessary
	asset.LastLoaded = time.Now()
	am.assets[path] = asset // Update the loaded time
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.Unlock()

	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}

	return loader.Load(path, params)
}

// Load runs the loader of a resource type directly, for resources that are
// not found by path such as fonts looked up by name.
func (am *AssetManager) Load(resourceType metadata.ResourceType, path string, params interface{}) (*metadata.Resource, error) {
	am.mutex.RLock()
	loader, ok := am.loaders[resourceType]
	am.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}
	return loader.Load(path, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	am.mutex.RLock()
	loader, ok := am.loaders[asset.Type]
	am.mutex.RUnlock()
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}
	return loader.Unload(asset)
}

// PollEvents drains the changes queued since the last call.
func (am *AssetManager) PollEvents() []AssetEvent {
	am.pendingMutex.Lock()
	defer am.pendingMutex.Unlock()

	events := make([]AssetEvent, 0, am.pending.Len())
	for !am.pending.IsEmpty() {
		e, err := am.pending.Dequeue()
		if err != nil {
			break
		}
		events = append(events, e)
	}
	return events
}

func (am *AssetManager) enqueue(e AssetEvent) {
	am.pendingMutex.Lock()
	defer am.pendingMutex.Unlock()
	if err := am.pending.Enqueue(e); err != nil {
		core.LogWarn("dropping asset event for %s: %s", e.Path, err)
	}
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {

		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogError("%s", err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if t := am.handleFileEvent(e.Name); t != metadata.ResourceTypeNone {
					am.enqueue(AssetEvent{Path: e.Name, Type: t, Op: AssetChanged})
				}
			}
			//Can't stat a deleted directory, so just pretend that it's always a directory and
			//try to remove from the watch list...  we really have no clue if it's a directory or not...
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if t := am.removeAsset(e.Name); t != metadata.ResourceTypeNone {
					am.enqueue(AssetEvent{Path: e.Name, Type: t, Op: AssetRemoved})
				}
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("%s", err)

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogError("%s", err)
			}
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found on the way.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return ErrClosed
	}

	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) metadata.ResourceType {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return assetType
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return assetType
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) metadata.ResourceType {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	asset, ok := am.assets[path]
	if !ok {
		return metadata.ResourceTypeNone
	}
	delete(am.assets, path)
	return asset.Type
}

func determineAssetType(path string) metadata.ResourceType {
	switch {
	case loaders.IsTexture(path):
		return metadata.ResourceTypeImage
	case filepath.Ext(path) == ".fnt":
		return metadata.ResourceTypeBitmapFont
	default:
		return metadata.ResourceTypeNone
	}
}
