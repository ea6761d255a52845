// Package resolve recognizes the URL shapes of the supported video source
// and extracts their video identifier. It is pure: no network calls, and a
// non-matching URL is a normal result, not an error.
package resolve

import (
	"net/url"
	"strings"

	"github.com/telefetch/telefetch/generic"
)

// A matcher extracts a video identifier from one recognized URL shape.
type matcher func(u *url.URL) (string, bool)

// Matchers are tried in order; the first capturing match wins.
var matchers = []matcher{
	matchWatchURL,
	matchShortURL,
	matchEmbedURL,
}

// ExtractVideoID returns the video identifier for a recognized URL, or None.
//
// Recognized shapes:
//		http(s?)://(www|m).youtube.com/watch?v={VIDEO_ID}
//		http(s?)://youtu.be/{VIDEO_ID}
//		http(s?)://(www|m).youtube.com/embed/{VIDEO_ID}
func ExtractVideoID(raw string) generic.Option[string] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return generic.None[string]()
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return generic.None[string]()
	}
	if parsed.Host == "" {
		// Allow scheme-less input like "youtube.com/watch?v=...".
		if parsed, err = url.Parse("https://" + raw); err != nil {
			return generic.None[string]()
		}
	}
	for _, match := range matchers {
		if id, ok := match(parsed); ok {
			return generic.Some(id)
		}
	}
	return generic.None[string]()
}

// WatchURL returns the canonical watch-page URL for a video identifier.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func isWatchHost(host string) bool {
	switch host {
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		return true
	default:
		return false
	}
}

func matchWatchURL(u *url.URL) (string, bool) {
	if !isWatchHost(u.Hostname()) || u.Path != "/watch" {
		return "", false
	}
	id := u.Query().Get("v")
	return id, id != ""
}

func matchShortURL(u *url.URL) (string, bool) {
	if u.Hostname() != "youtu.be" {
		return "", false
	}
	id := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)[0]
	return id, id != ""
}

func matchEmbedURL(u *url.URL) (string, bool) {
	if !isWatchHost(u.Hostname()) || !strings.HasPrefix(u.Path, "/embed/") {
		return "", false
	}
	id := strings.SplitN(strings.TrimPrefix(u.Path, "/embed/"), "/", 2)[0]
	return id, id != ""
}
