// Package sprites coordinates sprite atlas packing across compile passes.
package sprites

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
)

// Bundle collects the sprites requested during one pass and reuses the packed
// layout of an earlier pass while the requested set is unchanged.
type Bundle struct {
	packer ports.AtlasPacker

	requested map[domain.SpriteRequest]struct{}
	order     []domain.SpriteRequest

	layout          map[domain.SpriteRequest]domain.SpritePlacement
	layoutSignature uint64
	hasLayout       bool
	// committed is set once the atlas of the current layout was written.
	committed bool
	image     []byte
}

// NewBundle creates a Bundle packing through packer.
func NewBundle(packer ports.AtlasPacker) *Bundle {
	return &Bundle{
		packer:    packer,
		requested: make(map[domain.SpriteRequest]struct{}),
	}
}

// Clear resets the requested set; the packed layout is kept so an unchanged
// next pass can reuse it. The final clear after emission also releases the
// encoded atlas image.
func (b *Bundle) Clear(final bool) {
	b.requested = make(map[domain.SpriteRequest]struct{})
	b.order = nil
	if final {
		b.image = nil
	}
}

// Add registers a requested sprite. Duplicates are ignored.
func (b *Bundle) Add(key, color string, width, height, x, y int) {
	req := domain.SpriteRequest{Key: key, Color: color, Width: width, Height: height, X: x, Y: y}
	if _, ok := b.requested[req]; ok {
		return
	}
	b.requested[req] = struct{}{}
	b.order = append(b.order, req)
}

// Len returns the number of distinct requested sprites.
func (b *Bundle) Len() int {
	return len(b.order)
}

// WasChanged reports whether the requested set differs from the packed layout,
// or the atlas of that layout was never committed.
func (b *Bundle) WasChanged() bool {
	return !b.hasLayout || !b.committed || signature(b.order) != b.layoutSignature
}

// Build packs the requested sprites and returns the encoded atlas.
func (b *Bundle) Build(ctx context.Context) (*domain.Atlas, error) {
	requests := sorted(b.order)
	atlas, err := b.packer.Pack(ctx, requests)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrAtlasBuildFailed.Error())
	}
	b.layout = atlas.Placements
	b.layoutSignature = signature(requests)
	b.hasLayout = true
	b.committed = false
	b.image = atlas.Image
	return atlas, nil
}

// Commit records that the atlas of the last Build was written. Until then the
// layout is not reused by later passes.
func (b *Bundle) Commit() {
	b.committed = b.hasLayout
}

// Image returns the encoded atlas of the last Build until the final Clear.
func (b *Bundle) Image() []byte {
	return b.image
}

// Query returns the packed placement of a sprite added in this pass.
func (b *Bundle) Query(key, color string, width, height, x, y int) (domain.SpritePlacement, error) {
	req := domain.SpriteRequest{Key: key, Color: color, Width: width, Height: height, X: x, Y: y}
	p, ok := b.layout[req]
	if !ok {
		return domain.SpritePlacement{}, zerr.With(
			zerr.Wrap(domain.ErrSpriteNotPacked, fmt.Sprintf("%s (color %q, %dx%d at %d,%d)", key, color, width, height, x, y)),
			"key", key,
		)
	}
	return p, nil
}

func sorted(reqs []domain.SpriteRequest) []domain.SpriteRequest {
	out := slices.Clone(reqs)
	slices.SortFunc(out, compareRequests)
	return out
}

func compareRequests(a, b domain.SpriteRequest) int {
	switch {
	case a.Key != b.Key:
		return cmpString(a.Key, b.Key)
	case a.Color != b.Color:
		return cmpString(a.Color, b.Color)
	case a.Width != b.Width:
		return a.Width - b.Width
	case a.Height != b.Height:
		return a.Height - b.Height
	case a.X != b.X:
		return a.X - b.X
	default:
		return a.Y - b.Y
	}
}

func cmpString(a, b string) int {
	if a < b {
		return -1
	}
	return 1
}

// signature is an order independent digest of a request set.
func signature(reqs []domain.SpriteRequest) uint64 {
	h := xxhash.New()
	for _, r := range sorted(reqs) {
		_, _ = h.WriteString(r.Key)
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(r.Color)
		_, _ = h.WriteString("\x00")
		for _, n := range []int{r.Width, r.Height, r.X, r.Y} {
			_, _ = h.WriteString(strconv.Itoa(n))
			_, _ = h.WriteString(",")
		}
		_, _ = h.WriteString("\n")
	}
	return h.Sum64()
}
