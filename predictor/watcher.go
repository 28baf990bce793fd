package predictor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"aquaquant/logging"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the artifacts when any of them changes on disk. A failed
// reload keeps the previous artifacts serving.
func (p *Predictor) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(p.dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
					continue
				}
				if !isArtifact(filepath.Base(event.Name)) {
					continue
				}
				// Artifacts are written as three separate files;
				// debounce so we reload once per update.
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					if err := p.Reload(); err != nil {
						logging.L().Error("artifact reload failed", zap.Error(err))
						return
					}
					logging.L().Info("artifacts reloaded", zap.String("dir", p.dir))
					if p.onReload != nil {
						p.onReload(p.Info())
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.L().Warn("artifact watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// OnReload registers a callback fired after a successful hot reload.
func (p *Predictor) OnReload(fn func(ModelInfo)) {
	p.onReload = fn
}

func isArtifact(name string) bool {
	switch name {
	case ModelFile, XScalerFile, YScalerFile:
		return true
	}
	return false
}
