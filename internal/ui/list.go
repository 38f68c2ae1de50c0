package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotpin/internal/models"
)

var _ list.Item = listItem{}

// Item is one selectable row. Key identifies the choice to the caller.
type Item struct {
	Key   string
	Title string
	Desc  string
}

// listItem wraps [Item] to implement [list.Item].
type listItem struct {
	item Item
}

func (i listItem) FilterValue() string { return i.item.Title + " " + i.item.Desc }
func (i listItem) Title() string       { return i.item.Title }
func (i listItem) Description() string { return i.item.Desc }

// PlaylistItems keys remote playlists by ID.
func PlaylistItems(playlists []models.Playlist) []Item {
	items := make([]Item, len(playlists))
	for i, p := range playlists {
		desc := fmt.Sprintf("%d tracks", p.TrackCount)
		if p.Description != "" {
			desc = fmt.Sprintf("%s • %s", desc, p.Description)
		}
		items[i] = Item{Key: p.ID, Title: p.Name, Desc: desc}
	}
	return items
}

// RegistryItems keys registered playlists by name.
func RegistryItems(entries []models.RegistryEntry) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		title := e.Name
		if e.Default {
			title += " (default)"
		}
		desc := e.PlaylistID
		if e.DisplayName != "" {
			desc = fmt.Sprintf("%s • %s", e.DisplayName, e.PlaylistID)
		}
		items[i] = Item{Key: e.Name, Title: title, Desc: desc}
	}
	return items
}

// TrackItems keys tracks by URI, numbered by playlist position. Pinned tracks are marked.
func TrackItems(tracks []models.Track, pins models.PinSet) []Item {
	items := make([]Item, len(tracks))
	for i, t := range tracks {
		title := fmt.Sprintf("%d. %s", i+1, t.Title)
		if pins.Contains(t.URI) {
			title += " 📌"
		}
		desc := strings.Join(t.Artists, ", ")
		if t.Album != "" {
			desc = fmt.Sprintf("%s • %s", desc, t.Album)
		}
		items[i] = Item{Key: t.URI.String(), Title: title, Desc: desc}
	}
	return items
}
