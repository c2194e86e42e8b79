// Package vision holds raster heuristics over rendered pages.
package vision

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
	"github.com/kirillkom/acceptance-verifier/internal/core/ports"
)

const (
	DefaultMinArea   = 500
	DefaultMinAspect = 1.5
	DefaultThreshold = 150
	// DefaultBlurSigma matches a 5x5 Gaussian kernel.
	DefaultBlurSigma = 1.1
)

type SignatureOptions struct {
	MinArea   int
	MinAspect float64
	Threshold uint8
	BlurSigma float64
}

// SignatureMarker reports a page as signed when it contains a dark blob that
// is both large and wider than it is tall.
type SignatureMarker struct {
	opts SignatureOptions
}

var _ ports.SignatureMarker = (*SignatureMarker)(nil)

func NewSignatureMarker(opts SignatureOptions) *SignatureMarker {
	if opts.MinArea <= 0 {
		opts.MinArea = DefaultMinArea
	}
	if opts.MinAspect <= 0 {
		opts.MinAspect = DefaultMinAspect
	}
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.BlurSigma <= 0 {
		opts.BlurSigma = DefaultBlurSigma
	}
	return &SignatureMarker{opts: opts}
}

func (m *SignatureMarker) HasSignature(ctx context.Context, page domain.PageImage) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	img, err := imaging.Open(page.Path)
	if err != nil {
		return false, fmt.Errorf("open page raster: %w", err)
	}
	return m.Detect(img), nil
}

// Detect runs the heuristic on a decoded raster.
func (m *SignatureMarker) Detect(img image.Image) bool {
	gray := imaging.Blur(imaging.Grayscale(img), m.opts.BlurSigma)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	if w == 0 || h == 0 {
		return false
	}

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			mask[y*w+x] = row[x*4] <= m.opts.Threshold
		}
	}

	for _, b := range findBlobs(mask, w, h) {
		if b.parent != 0 {
			continue
		}
		bw, bh := b.width(), b.height()
		if b.area() > m.opts.MinArea && float64(bw)/float64(bh) > m.opts.MinAspect {
			return true
		}
	}
	return false
}

// blob is an 8-connected foreground component. Its area counts its own
// pixels plus everything it fully encloses, which approximates the area
// inside the component's outer contour. A component lying inside another's
// hole has a non-zero parent and no outer contour of its own.
type blob struct {
	minX, minY, maxX, maxY int
	pixels                 int
	holes                  int
	parent                 int32
}

func (b blob) width() int  { return b.maxX - b.minX + 1 }
func (b blob) height() int { return b.maxY - b.minY + 1 }
func (b blob) area() int   { return b.pixels + b.holes }

func (b blob) contains(o blob) bool {
	return b.minX <= o.minX && b.minY <= o.minY && b.maxX >= o.maxX && b.maxY >= o.maxY
}

func (b blob) boxArea() int { return b.width() * b.height() }

func (b *blob) add(x, y int) {
	b.pixels++
	b.minX = min(b.minX, x)
	b.minY = min(b.minY, y)
	b.maxX = max(b.maxX, x)
	b.maxY = max(b.maxY, y)
}

func newBlob(w, h int) blob {
	return blob{minX: w, minY: h, maxX: -1, maxY: -1}
}

func findBlobs(mask []bool, w, h int) []blob {
	labels := make([]int32, w*h)
	var blobs []blob
	var stack []int

	for start, fg := range mask {
		if !fg || labels[start] != 0 {
			continue
		}
		id := int32(len(blobs) + 1)
		b := newBlob(w, h)
		labels[start] = id
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%w, p/w
			b.add(x, y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if mask[q] && labels[q] == 0 {
						labels[q] = id
						stack = append(stack, q)
					}
				}
			}
		}
		blobs = append(blobs, b)
	}

	for start, fg := range mask {
		if fg || labels[start] != 0 {
			continue
		}
		hole := newBlob(w, h)
		border := false
		neighbors := map[int32]struct{}{}
		labels[start] = -1
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%w, p/w
			hole.add(x, y)
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				border = true
			}
			for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				q := ny*w + nx
				switch {
				case mask[q]:
					neighbors[labels[q]] = struct{}{}
				case labels[q] == 0:
					labels[q] = -1
					stack = append(stack, q)
				}
			}
		}
		if border {
			continue
		}
		var owner int32
		for id := range neighbors {
			if !blobs[id-1].contains(hole) {
				continue
			}
			if owner == 0 || blobs[id-1].boxArea() < blobs[owner-1].boxArea() {
				owner = id
			}
		}
		if owner == 0 {
			continue
		}
		blobs[owner-1].holes += hole.pixels
		for id := range neighbors {
			if id != owner && blobs[id-1].parent == 0 && hole.contains(blobs[id-1]) {
				blobs[id-1].parent = owner
			}
		}
	}

	inner := make([]int, len(blobs))
	for _, b := range blobs {
		if b.parent == 0 {
			continue
		}
		root := b.parent
		for blobs[root-1].parent != 0 {
			root = blobs[root-1].parent
		}
		inner[root-1] += b.pixels + b.holes
	}
	for i := range blobs {
		blobs[i].holes += inner[i]
	}
	return blobs
}
