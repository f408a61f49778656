// Package notifier announces newly discovered races to outside channels.
//
// The pipeline diffs each run against the previous snapshot and hands the
// new events to a Notifier. Twitter posting handles OAuth and spacing
// between posts; a dry-run implementation prints the announcements
// instead.
package notifier

import (
	"github.com/marathonkr/marathon-pipeline/internal/event"
)

// Notifier posts announcements for newly discovered events.
type Notifier interface {
	Notify(events []event.Event) error
}
