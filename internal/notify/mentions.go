// Package notify implements the event-to-notification pipeline: identity
// resolution, mention scanning, per-action rendering, and delivery.
package notify

import (
	"strings"
)

// ScanMentions extracts the usernames explicitly @-mentioned in a comment
// body, in first-occurrence order, duplicates included. Lines that start
// with a quote marker after leading whitespace are reply context, not live
// mentions, and are skipped.
func ScanMentions(body string) []string {
	var usernames []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		for _, token := range strings.Fields(line) {
			if !strings.HasPrefix(token, "@") {
				continue
			}
			if name := strings.TrimLeft(token, "@"); name != "" {
				usernames = append(usernames, name)
			}
		}
	}
	return usernames
}
