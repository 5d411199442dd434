package contact

import (
	"context"
	"time"

	"fakturo/pkg/debounce"
	"fakturo/pkg/domain"
)

// debounceDelay is how long the watcher waits after the last qualifying field
// edit before firing a duplicate check.
const debounceDelay = 300 * time.Millisecond

// Watcher debounces duplicate checks while a contact form is being edited.
// Every edit to name, email, VAT number, or country voids the previously
// scheduled check and cancels an in-flight one, so only the most recent
// result is ever applied.
type Watcher struct {
	detector  *Detector
	debouncer *debounce.Debouncer
	exclude   domain.ContactID
	onResult  func([]PotentialDuplicate)
}

// NewWatcher creates a watcher for one editing session. exclude is the id of
// the contact being edited (nil for a new contact) so it never flags itself.
// onResult receives each completed check's duplicates; it is not called for
// superseded checks.
func NewWatcher(detector *Detector, exclude domain.ContactID, onResult func([]PotentialDuplicate)) *Watcher {
	return &Watcher{
		detector:  detector,
		debouncer: debounce.New(debounceDelay),
		exclude:   exclude,
		onResult:  onResult,
	}
}

// FieldEdited reschedules the duplicate check with the latest form snapshot.
func (w *Watcher) FieldEdited(form Form) {
	w.debouncer.Schedule(func(ctx context.Context) {
		duplicates := w.detector.FindDuplicates(ctx, form, w.exclude)
		// A reschedule may have superseded this check while it was running;
		// its result must be discarded, not applied late.
		if ctx.Err() != nil {
			return
		}
		w.onResult(duplicates)
	})
}

// Close stops any pending or in-flight check. Called on screen exit.
func (w *Watcher) Close() {
	w.debouncer.Stop()
}
