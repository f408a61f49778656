package notifier

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/marathonkr/marathon-pipeline/internal/event"
)

// maxPostLen is the per-post character cap.
const maxPostLen = 280

// postSpacing is the pause between consecutive posts.
const postSpacing = 2 * time.Second

// TwitterNotifier posts new race announcements to Twitter.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier builds a notifier from environment credentials.
// Required variables:
//   - TWITTER_API_KEY
//   - TWITTER_API_SECRET
//   - TWITTER_ACCESS_TOKEN
//   - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts one announcement per event, spacing posts out to stay
// under the rate limit.
func (n *TwitterNotifier) Notify(events []event.Event) error {
	for i, e := range events {
		post := formatAnnouncement(e)

		if _, _, err := n.client.Statuses.Update(post, nil); err != nil {
			return fmt.Errorf("posting announcement for %s: %w", e.ID, err)
		}

		if i < len(events)-1 {
			time.Sleep(postSpacing)
		}
	}
	return nil
}

// formatAnnouncement renders an event as a post, capped at the platform's
// character limit.
func formatAnnouncement(e event.Event) string {
	var b strings.Builder

	b.WriteString("🏃 새로운 마라톤 대회!\n\n")
	b.WriteString(fmt.Sprintf("📍 %s\n", e.Name))
	b.WriteString(fmt.Sprintf("📅 %s\n", e.Date))

	if e.Region != "" && e.Region != event.RegionOther {
		b.WriteString(fmt.Sprintf("🗺 %s\n", e.Region))
	}
	if len(e.Distances) > 0 {
		b.WriteString(fmt.Sprintf("👟 %s\n", strings.Join(e.Distances, " · ")))
	}
	if e.RegistrationURL != "" {
		b.WriteString(fmt.Sprintf("\n🔗 %s\n", e.RegistrationURL))
	}
	b.WriteString("\n#마라톤 #러닝")

	post := b.String()
	if runes := []rune(post); len(runes) > maxPostLen {
		post = string(runes[:maxPostLen-3]) + "..."
	}
	return post
}
