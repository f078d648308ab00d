package assets

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/nucleo/engine/assets/loaders"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// ReloadFunc runs on the watcher goroutine when a tracked asset is
// rewritten on disk.
type ReloadFunc func(path string, assetType metadata.ResourceType)

type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	watcher  *fsnotify.Watcher
	onReload ReloadFunc

	group     errgroup.Group
	done      chan struct{}
	closeOnce sync.Once
}

func NewAssetManager() (*AssetManager, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		watcher: watcher,
		done:    make(chan struct{}),
	}, nil
}

// Initialize indexes every recognized asset under assetsDir and, if
// watch is true, keeps the index current as files change on disk.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	am.root = assetsDir

	am.registerLoader(metadata.ResourceTypeShaderBinary, &loaders.ShaderBinaryLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.TextureLoader{})

	if err := am.watchRecursive(assetsDir, !watch); err != nil {
		return errors.Wrapf(err, "failed to index assets under %s", assetsDir)
	}

	if watch {
		am.group.Go(am.run)
	}

	return nil
}

// Shutdown stops the watcher and joins its goroutine.
func (am *AssetManager) Shutdown() {
	am.closeOnce.Do(func() {
		close(am.done)
		am.watcher.Close()
		if err := am.group.Wait(); err != nil {
			core.LogError("asset watcher: %s", err.Error())
		}
	})
}

// OnReload registers fn to run when a tracked asset changes. Only one
// callback is kept; nil disables hot reload notifications.
func (am *AssetManager) OnReload(fn ReloadFunc) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.onReload = fn
}

func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset resolves filename against the asset index and hands it to
// the loader registered for resourceType. Shader binaries live under
// shaders/<name>.spv, images under textures/<name>.
func (am *AssetManager) LoadAsset(filename string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	var path string
	switch resourceType {
	case metadata.ResourceTypeShaderBinary:
		path = filepath.Join(am.root, "shaders", filename+".spv")
	case metadata.ResourceTypeImage:
		path = filepath.Join(am.root, "textures", filename)
	default:
		return nil, errors.Newf("unknown resource type: %d", resourceType)
	}

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, errors.Newf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, errors.Newf("no loader registered for asset type: %d", asset.Type)
	}

	return loader.Load(path, resourceType, params)
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	am.mutex.RLock()
	loader, exists := am.loaders[determineAssetType(asset.FullPath)]
	am.mutex.RUnlock()
	if !exists {
		return nil
	}
	return loader.Unload(asset)
}

func (am *AssetManager) run() error {
	for {
		select {
		case e, ok := <-am.watcher.Events:
			if !ok {
				return am.streamClosed()
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name, false)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			// Can't stat a deleted entry, so try to drop it from both
			// the index and the watch list.
			if e.Op&fsnotify.Remove != 0 {
				am.removeAsset(e.Name)
				am.watcher.Remove(e.Name)
			}

		case e, ok := <-am.watcher.Errors:
			if !ok {
				return am.streamClosed()
			}
			core.LogError("asset watcher: %s", e.Error())

		case <-am.done:
			return nil
		}
	}
}

// streamClosed distinguishes an orderly Shutdown from the event stream
// dying underneath a live manager.
func (am *AssetManager) streamClosed() error {
	select {
	case <-am.done:
		return nil
	default:
		return errors.New("asset watcher event stream closed unexpectedly")
	}
}

// watchRecursive walks path, indexing files and adding every directory
// to the watch list. With indexOnly no watches are installed, only the
// index is built.
func (am *AssetManager) watchRecursive(path string, indexOnly bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if !indexOnly {
				if err := am.watcher.Add(walkPath); err != nil {
					return err
				}
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// handleFileEvent records a created or modified file in the index and
// notifies the reload callback when one is set.
func (am *AssetManager) handleFileEvent(path string) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	_, known := am.assets[path]
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	onReload := am.onReload
	am.mutex.Unlock()

	if known && onReload != nil {
		core.LogDebug("asset changed on disk: %s", path)
		onReload(path, assetType)
	}
}

func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, path)
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".png", ".jpg", ".jpeg":
		return metadata.ResourceTypeImage
	case ".spv":
		return metadata.ResourceTypeShaderBinary
	default:
		return metadata.ResourceTypeNone
	}
}
