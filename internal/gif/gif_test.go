package gif

import "testing"

func TestApplyFavorites_MatchesByID(t *testing.T) {
	items := []Item{{ID: "1"}, {ID: "2"}}
	favs := []Item{{ID: "2", Favorite: true}}

	got := ApplyFavorites(items, favs)
	want := []Item{{ID: "1", Favorite: false}, {ID: "2", Favorite: true}}
	if !Equal(got, want) {
		t.Fatalf("ApplyFavorites = %#v, want %#v", got, want)
	}
	if items[1].Favorite {
		t.Fatalf("ApplyFavorites mutated its input")
	}
}

func TestApplyFavorites_FirstDuplicateWins(t *testing.T) {
	items := []Item{{ID: "1"}, {ID: "2"}}
	favs := []Item{
		{ID: "1", Favorite: true},
		{ID: "2", Favorite: false},
		{ID: "1", Favorite: false},
		{ID: "2", Favorite: true},
	}

	got := ApplyFavorites(items, favs)
	want := []Item{{ID: "1", Favorite: true}, {ID: "2", Favorite: false}}
	if !Equal(got, want) {
		t.Fatalf("ApplyFavorites = %#v, want %#v", got, want)
	}
}

func TestApplyFavorites_ClearsStaleFlags(t *testing.T) {
	items := []Item{{ID: "1", Favorite: true}}
	got := ApplyFavorites(items, nil)
	if got[0].Favorite {
		t.Fatalf("item 1 still favorite after empty favorites emission")
	}
}

func TestApplyFavorites_EmptyItems(t *testing.T) {
	if got := ApplyFavorites(nil, []Item{{ID: "1", Favorite: true}}); got != nil {
		t.Fatalf("ApplyFavorites(nil) = %#v, want nil", got)
	}
}

func TestPageNext(t *testing.T) {
	p := Page{Offset: 25, Limit: 25}
	if got := p.Next(25); got.Offset != 50 || got.Limit != 25 {
		t.Fatalf("Next = %+v, want offset 50 limit 25", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := (Item{ID: "abc"}).DisplayTitle(); got != "abc" {
		t.Fatalf("DisplayTitle = %q, want abc", got)
	}
	if got := (Item{ID: "abc", Title: "Cat"}).DisplayTitle(); got != "Cat" {
		t.Fatalf("DisplayTitle = %q, want Cat", got)
	}
}
