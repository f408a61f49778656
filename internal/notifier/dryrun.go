package notifier

import (
	"fmt"
	"io"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

// DryRunNotifier writes the announcements that would be posted instead of
// posting them.
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out.
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints each announcement with its character count.
func (n *DryRunNotifier) Notify(events []event.Event) error {
	for i, e := range events {
		post := formatAnnouncement(e)
		fmt.Fprintf(n.out, "--- 게시물 %d/%d ---\n", i+1, len(events))
		fmt.Fprintln(n.out, post)
		fmt.Fprintf(n.out, "\n(%d자)\n\n", len([]rune(post)))
	}
	return nil
}
