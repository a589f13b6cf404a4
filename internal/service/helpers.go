package service

import "net/url"

// paramValues builds url.Values from alternating name/value pairs, skipping
// empty values so cache keys stay canonical.
func paramValues(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		values.Set(pairs[i], pairs[i+1])
	}
	return values
}
