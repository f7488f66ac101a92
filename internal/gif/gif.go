// Package gif defines the domain types shared by the Giphy client, the
// favorites store, the state coordinator, and the UI.
package gif

// Item is a single GIF as presented to the user.
type Item struct {
	ID         string
	Title      string
	URL        string
	PreviewURL string
	Width      int
	Height     int
	Size       int64
	Rating     string
	Username   string
	Favorite   bool
}

// DisplayTitle returns the title, falling back to the ID for untitled GIFs.
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.ID
}

// Page selects a window of results.
type Page struct {
	Offset int
	Limit  int
}

// Next returns the page following p after n results were received.
func (p Page) Next(n int) Page {
	return Page{Offset: p.Offset + n, Limit: p.Limit}
}

// Clone returns a copy of items. A nil or empty input yields nil.
func Clone(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	copy(dup, items)
	return dup
}

// ApplyFavorites returns a copy of items with the Favorite flag recomputed
// from favorites by ID. Items without a match are marked not-favorite. When
// favorites repeats an ID, the first entry decides.
func ApplyFavorites(items, favorites []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	lookup := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		if _, seen := lookup[fav.ID]; seen {
			continue
		}
		lookup[fav.ID] = fav.Favorite
	}
	out := make([]Item, len(items))
	for i, item := range items {
		item.Favorite = lookup[item.ID]
		out[i] = item
	}
	return out
}

// Equal reports whether a and b hold the same items in the same order.
func Equal(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
