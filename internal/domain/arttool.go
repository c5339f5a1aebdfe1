package domain

import "context"

// ArtTool is one catalog record as served by the upstream catalog API.
// The core only relies on ID, ArtName, Image, Price and LimitedTimeDeal;
// the rest is carried through for the detail screen.
type ArtTool struct {
	ID              string   `json:"id"`
	ArtName         string   `json:"artName"`
	Image           string   `json:"image"`
	Price           float64  `json:"price"`
	LimitedTimeDeal float64  `json:"limitedTimeDeal"`
	Description     string   `json:"description"`
	Brand           string   `json:"brand"`
	GlassSurface    bool     `json:"glassSurface"`
	Comments        []Review `json:"comments,omitempty"`
}

type Review struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// FavoriteEntry is an ArtTool resolved against the favorite set. It is
// materialized for rendering and never persisted.
type FavoriteEntry struct {
	ArtTool
}

// CatalogSource fetches the full catalog from the remote API.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]ArtTool, error)
}

// Navigator is the presentation-layer hook for opening an item's detail
// view. Fire-and-forget; the core expects no result.
type Navigator interface {
	NavigateToDetail(id string)
}
