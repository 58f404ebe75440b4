package service

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ParseVideoID accepts a bare 11-character video ID or a watch/short/embed
// URL and returns the canonical video ID. Unrecognizable input yields
// ErrInvalidVideoID.
func ParseVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidVideoID
	}
	if videoIDRe.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidVideoID
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		return validateID(strings.Trim(u.Path, "/"))
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if u.Path == "/watch" {
			return validateID(u.Query().Get("v"))
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				id, _, _ := strings.Cut(rest, "/")
				return validateID(id)
			}
		}
	}
	return "", ErrInvalidVideoID
}

func validateID(id string) (string, error) {
	if !videoIDRe.MatchString(id) {
		return "", ErrInvalidVideoID
	}
	return id, nil
}
