package scrape

import "net/url"

// IsValidURL reports whether raw parses into a URL with both a scheme and
// a host. It is applied to user-submitted URLs and to every discovered
// link, and never touches the network.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
