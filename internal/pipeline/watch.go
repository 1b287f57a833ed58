package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ownermap/internal/events"
)

// Watcher re-runs the pipeline whenever one of the mod's inputs changes
type Watcher struct {
	runner  *Runner
	modRoot string
	watcher *fsnotify.Watcher
	reload  chan struct{}
	logger  zerolog.Logger

	// OnRun, if set, is called after every run
	OnRun func(*Summary, error)
}

// NewWatcher creates a watcher for modRoot
func NewWatcher(runner *Runner, modRoot string, logger zerolog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		runner:  runner,
		modRoot: modRoot,
		watcher: watcher,
		reload:  make(chan struct{}, 1),
		logger:  logger.With().Str("component", "watcher").Logger(),
	}, nil
}

// Attach subscribes sub to the runner's events for the life of the watch.
// The returned func detaches it again.
func (w *Watcher) Attach(sub events.Subscriber) func() {
	bus := w.runner.Bus()
	bus.Subscribe(sub)
	w.logger.Debug().
		Str("subscriber_id", sub.ID()).
		Int("subscribers", bus.GetSubscriberCount()).
		Msg("Subscriber attached")
	return func() {
		bus.Unsubscribe(sub.ID())
		w.logger.Debug().
			Str("subscriber_id", sub.ID()).
			Int("subscribers", bus.GetSubscriberCount()).
			Msg("Subscriber detached")
	}
}

// Trigger schedules a run, e.g. after the config file changed
func (w *Watcher) Trigger() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}

// Run renders once, then again after every burst of input changes, until
// ctx is cancelled. Failed runs are logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addInputs(); err != nil {
		return err
	}
	w.runOnce(ctx)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("Watch loop stopped due to context cancellation")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				w.addIfDir(event.Name)
			}
			w.logger.Debug().
				Str("file", event.Name).
				Str("op", event.Op.String()).
				Msg("Input changed, scheduling run")
			pending = time.After(w.runner.Config().Debounce())

		case <-w.reload:
			pending = time.After(w.runner.Config().Debounce())

		case <-pending:
			pending = nil
			w.runOnce(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("File watcher error")
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	sum, err := w.runner.Run(ctx, w.modRoot)
	if err != nil {
		w.logger.Error().Err(err).Msg("Run failed, waiting for changes")
	}
	if w.OnRun != nil {
		w.OnRun(sum, err)
	}
}

// addInputs watches the directories holding the input files and every
// directory below the states directory
func (w *Watcher) addInputs() error {
	cfg := w.runner.Config()
	dirs := map[string]bool{
		w.path(filepath.Dir(cfg.Input.ProvincesBitmap)): true,
		w.path(filepath.Dir(cfg.Input.Definition)):      true,
		w.path(filepath.Dir(cfg.Input.CountryColors)):   true,
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}

	statesDir := w.path(cfg.Input.StatesDir)
	err := filepath.WalkDir(statesDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !dirs[p] {
			dirs[p] = true
			return w.watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	w.logger.Info().Int("directories", len(dirs)).Str("mod_root", w.modRoot).Msg("Watching mod inputs")
	return nil
}

func (w *Watcher) addIfDir(p string) {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(p); err == nil {
		w.logger.Debug().Str("dir", p).Msg("Watching new directory")
	}
}

// relevant drops chmod noise and the watcher's own output file
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	out, err := filepath.Abs(w.runner.Config().Output.Path)
	if err != nil {
		return true
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return true
	}
	return name != out
}

func (w *Watcher) path(rel string) string {
	return filepath.Join(w.modRoot, filepath.FromSlash(rel))
}
