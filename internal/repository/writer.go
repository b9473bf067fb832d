package repository

import (
	"context"
	"time"
)

// markDirty signals the writer. Signals coalesce: the writer saves the
// latest collection, so one pending signal covers any number of mutations.
func (r *Repository) markDirty() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

func (r *Repository) writer() {
	defer close(r.stopped)
	for {
		select {
		case <-r.dirty:
			r.save()
		case reply := <-r.flush:
			r.savePending()
			reply <- r.LastSaveError()
		case <-r.quit:
			r.savePending()
			return
		}
	}
}

func (r *Repository) savePending() {
	select {
	case <-r.dirty:
		r.save()
	default:
	}
}

// save writes the collection as it is now, not as it was when the save was
// requested.
func (r *Repository) save() {
	r.mu.RLock()
	people := r.people
	r.mu.RUnlock()

	start := time.Now()
	err := r.store.Save(context.Background(), people)
	r.metrics.ObserveSave(time.Since(start), err)

	r.errMu.Lock()
	r.lastErr = err
	r.errMu.Unlock()

	if err != nil {
		r.logger.Error("Failed to save people", "people", len(people), "error", err)
		if r.onSaveError != nil {
			r.onSaveError(err)
		}
		return
	}
	r.logger.Debug("People saved", "people", len(people), "duration_ms", time.Since(start).Milliseconds())
}

// LastSaveError returns the result of the most recent save. A non-nil value
// means the durable copy is behind the in-memory collection.
func (r *Repository) LastSaveError() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.lastErr
}

// Flush writes any pending change and returns the result of the most recent
// save.
func (r *Repository) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case r.flush <- reply:
	case <-r.stopped:
		return r.LastSaveError()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further mutations, writes any pending change and stops the
// writer. It returns the result of the last save. The store is not closed.
func (r *Repository) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.state = StateClosed
		r.mu.Unlock()
		close(r.quit)
	})

	select {
	case <-r.stopped:
		return r.LastSaveError()
	case <-ctx.Done():
		return ctx.Err()
	}
}
