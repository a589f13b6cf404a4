package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ListID is the sentinel id meaning "the whole collection" of a kind.
const ListID = "LIST"

// Tag labels cached data. Queries provide tags; mutations invalidate them.
type Tag struct {
	Kind string
	ID   string
}

// ItemTag builds a per-record tag.
func ItemTag(kind, id string) Tag {
	return Tag{Kind: kind, ID: id}
}

// ListTag builds the collection-level tag for a kind.
func ListTag(kind string) Tag {
	return Tag{Kind: kind, ID: ListID}
}

func (t Tag) String() string {
	return t.Kind + ":" + t.ID
}

// ListTags produces the conventional provided-tag set for a list result:
// the LIST tag plus one tag per element, so targeted mutations can
// invalidate a single item without touching unrelated item subscribers.
func ListTags(kind string, ids []string) []Tag {
	tags := make([]Tag, 0, len(ids)+1)
	tags = append(tags, ListTag(kind))
	for _, id := range ids {
		if id == "" {
			continue
		}
		tags = append(tags, ItemTag(kind, id))
	}
	return tags
}

func intersects(provided, invalidated []Tag) bool {
	for _, p := range provided {
		for _, i := range invalidated {
			if p == i {
				return true
			}
		}
	}
	return false
}

// Key identifies one cached query: the acting principal, the upstream
// endpoint and its serialized parameters. Two screens issuing the same key
// share one cache entry and at most one in-flight request.
type Key struct {
	Principal string
	Endpoint  string
	Params    url.Values
}

// String renders the canonical cache key with deterministically ordered
// parameters.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return fmt.Sprintf("%s|%s", k.Principal, k.Endpoint)
	}

	names := make([]string, 0, len(k.Params))
	for name := range k.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		values := append([]string(nil), k.Params[name]...)
		sort.Strings(values)
		for _, v := range values {
			b.WriteByte('&')
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}

	return fmt.Sprintf("%s|%s?%s", k.Principal, k.Endpoint, b.String()[1:])
}
