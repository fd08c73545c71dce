package domain

// SpriteRequest identifies one sprite to pack. Width and Height of zero mean
// the natural image size.
type SpriteRequest struct {
	Key    string
	Color  string
	Width  int
	Height int
	X      int
	Y      int
}

// SpritePlacement is the rectangle a sprite occupies in the atlas.
type SpritePlacement struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Atlas is an encoded sprite sheet and the placement of each request in it.
type Atlas struct {
	Image      []byte
	Width      int
	Height     int
	Placements map[SpriteRequest]SpritePlacement
}
