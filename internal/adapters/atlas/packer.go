// Package atlas packs sprite images into a single PNG sheet.
package atlas

import (
	"bytes"
	"cmp"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.trai.ch/bb/internal/core/domain"
	"go.trai.ch/bb/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Packer implements ports.AtlasPacker. Decoded images are kept between
// passes and reloaded when their modification time changes.
type Packer struct {
	fsys  ports.FileSystem
	group singleflight.Group

	mu     sync.Mutex
	images map[string]decoded
}

type decoded struct {
	modTime time.Time
	img     image.Image
}

// New creates a Packer reading images from fsys.
func New(fsys ports.FileSystem) *Packer {
	return &Packer{fsys: fsys, images: make(map[string]decoded)}
}

// Pack loads every requested image and lays the sprites out on shelves.
func (p *Packer) Pack(ctx context.Context, requests []domain.SpriteRequest) (*domain.Atlas, error) {
	sprites := make([]sprite, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, req := range requests {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := p.load(req.Key)
			if err != nil {
				return err
			}
			s, err := cut(img, req)
			if err != nil {
				return zerr.With(err, "path", req.Key)
			}
			sprites[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	width, height := layout(sprites)
	sheet := image.NewNRGBA(image.Rect(0, 0, width, height))
	placements := make(map[domain.SpriteRequest]domain.SpritePlacement, len(sprites))
	for _, s := range sprites {
		r := image.Rect(s.x, s.y, s.x+s.img.Bounds().Dx(), s.y+s.img.Bounds().Dy())
		draw.Draw(sheet, r, s.img, s.img.Bounds().Min, draw.Src)
		placements[s.req] = domain.SpritePlacement{Width: r.Dx(), Height: r.Dy(), X: s.x, Y: s.y}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, sheet); err != nil {
		return nil, zerr.Wrap(err, "encode sprite atlas")
	}

	return &domain.Atlas{Image: buf.Bytes(), Width: width, Height: height, Placements: placements}, nil
}

func (p *Packer) load(path string) (image.Image, error) {
	info, err := p.fsys.Stat(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSpriteLoadFailed.Error()), "path", path)
	}

	p.mu.Lock()
	cached, ok := p.images[path]
	p.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.img, nil
	}

	v, err, _ := p.group.Do(path, func() (any, error) {
		data, err := p.fsys.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.images[path] = decoded{modTime: info.ModTime(), img: img}
		p.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSpriteLoadFailed.Error()), "path", path)
	}
	img, _ := v.(image.Image)
	return img, nil
}

// sprite is a cut and tinted request waiting for its position.
type sprite struct {
	req  domain.SpriteRequest
	img  *image.NRGBA
	x, y int
}

// cut crops img to the requested rectangle and applies the tint. A zero
// width or height extends to the image edge.
func cut(img image.Image, req domain.SpriteRequest) (sprite, error) {
	b := img.Bounds()
	r := image.Rect(b.Min.X+req.X, b.Min.Y+req.Y, b.Max.X, b.Max.Y)
	if req.Width > 0 {
		r.Max.X = r.Min.X + req.Width
	}
	if req.Height > 0 {
		r.Max.Y = r.Min.Y + req.Height
	}
	r = r.Intersect(b)
	if r.Empty() {
		return sprite{}, zerr.With(zerr.New("sprite rectangle outside image"), "rect", r.String())
	}

	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), img, r.Min, draw.Src)

	if req.Color != "" {
		tint, err := parseColor(req.Color)
		if err != nil {
			return sprite{}, err
		}
		recolor(out, tint)
	}
	return sprite{req: req, img: out}, nil
}

// recolor replaces the color of every pixel and keeps its alpha.
func recolor(img *image.NRGBA, c color.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = c.R, c.G, c.B
	}
}

// parseColor accepts #rgb, #rrggbb and rgb(r,g,b).
func parseColor(s string) (color.NRGBA, error) {
	bad := zerr.With(zerr.New("unsupported sprite color"), "color", s)
	s = strings.TrimSpace(s)

	if inner, ok := strings.CutPrefix(s, "rgb("); ok {
		parts := strings.Split(strings.TrimSuffix(inner, ")"), ",")
		if len(parts) != 3 {
			return color.NRGBA{}, bad
		}
		var ch [3]uint8
		for i, part := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if err != nil {
				return color.NRGBA{}, bad
			}
			ch[i] = uint8(n)
		}
		return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xff}, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return color.NRGBA{}, bad
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, bad
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, bad
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// layout assigns positions with a shelf packer: tallest sprites first, rows
// no wider than the square root of the total area or the widest sprite.
// An empty set yields a 1x1 sheet.
func layout(sprites []sprite) (int, int) {
	if len(sprites) == 0 {
		return 1, 1
	}

	order := make([]int, len(sprites))
	area, widest := 0, 0
	for i, s := range sprites {
		order[i] = i
		w, h := s.img.Bounds().Dx(), s.img.Bounds().Dy()
		area += w * h
		widest = max(widest, w)
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ha, hb := sprites[a].img.Bounds().Dy(), sprites[b].img.Bounds().Dy()
		if c := cmp.Compare(hb, ha); c != 0 {
			return c
		}
		return cmp.Compare(sprites[b].img.Bounds().Dx(), sprites[a].img.Bounds().Dx())
	})

	limit := max(widest, int(math.Ceil(math.Sqrt(float64(area)))))
	x, y, shelf, width := 0, 0, 0, 0
	for _, i := range order {
		w, h := sprites[i].img.Bounds().Dx(), sprites[i].img.Bounds().Dy()
		if x > 0 && x+w > limit {
			x, y, shelf = 0, y+shelf, 0
		}
		sprites[i].x, sprites[i].y = x, y
		x += w
		shelf = max(shelf, h)
		width = max(width, x)
	}
	return width, y + shelf
}
