package vision

import (
	"image"
	"math"
	"sort"
)

// Result is a located template: Center is in haystack coordinates
type Result struct {
	Center image.Point
	Bounds image.Rectangle
	Score  float64
}

// Coarse search keeps this many candidates for full-resolution refinement
const maxCandidates = 8

// Match finds needle inside haystack using zero-mean normalized
// cross-correlation. Scores are in [-1, 1]; a match needs score >= confidence.
// Large templates are searched on a box-downsampled copy first and refined at
// full resolution around the best coarse hits.
func Match(haystack, needle image.Image, confidence float64) (Result, bool) {
	hay := grayPlane(haystack)
	tpl := grayPlane(needle)
	if tpl.w == 0 || tpl.h == 0 || tpl.w > hay.w || tpl.h > hay.h {
		return Result{}, false
	}

	step := scaleFor(tpl)
	var best candidate
	if step == 1 {
		best = search(hay, tpl, []image.Rectangle{{Max: image.Pt(hay.w-tpl.w+1, hay.h-tpl.h+1)}})
	} else {
		coarseHay := hay.downsample(step)
		coarseTpl := tpl.downsample(step)
		hits := topCandidates(coarseHay, coarseTpl)

		areas := make([]image.Rectangle, 0, len(hits))
		for _, h := range hits {
			x, y := h.x*step, h.y*step
			areas = append(areas, image.Rect(x-step, y-step, x+step+1, y+step+1).
				Intersect(image.Rect(0, 0, hay.w-tpl.w+1, hay.h-tpl.h+1)))
		}
		best = search(hay, tpl, areas)
	}

	if best.score < confidence || math.IsNaN(best.score) {
		return Result{}, false
	}

	origin := haystack.Bounds().Min
	r := image.Rect(best.x, best.y, best.x+tpl.w, best.y+tpl.h).Add(origin)
	return Result{
		Center: image.Pt(r.Min.X+tpl.w/2, r.Min.Y+tpl.h/2),
		Bounds: r,
		Score:  best.score,
	}, true
}

// scaleFor picks a downsample factor leaving the template at least 12px on its short side
func scaleFor(tpl plane) int {
	short := tpl.w
	if tpl.h < short {
		short = tpl.h
	}
	s := short / 12
	if s < 1 {
		return 1
	}
	return s
}

type candidate struct {
	x, y  int
	score float64
}

// search scores every top-left position inside areas and returns the best.
// Ties keep the first position in scan order.
func search(hay, tpl plane, areas []image.Rectangle) candidate {
	ii := newIntegral(hay)
	zt, tnorm := tpl.zeroMean()

	best := candidate{score: math.Inf(-1)}
	for _, area := range areas {
		for y := area.Min.Y; y < area.Max.Y; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				s := score(hay, ii, tpl, zt, tnorm, x, y)
				if s > best.score || (s == best.score && (y < best.y || (y == best.y && x < best.x))) {
					best = candidate{x: x, y: y, score: s}
				}
			}
		}
	}
	return best
}

// topCandidates keeps the best coarse positions regardless of score. Downsampling
// blurs a template that is not aligned to the grid, so coarse scores run low.
func topCandidates(hay, tpl plane) []candidate {
	ii := newIntegral(hay)
	zt, tnorm := tpl.zeroMean()

	var out []candidate
	for y := 0; y <= hay.h-tpl.h; y++ {
		for x := 0; x <= hay.w-tpl.w; x++ {
			s := score(hay, ii, tpl, zt, tnorm, x, y)
			if len(out) == maxCandidates && s <= out[len(out)-1].score {
				continue
			}
			out = append(out, candidate{x: x, y: y, score: s})
			sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
			if len(out) > maxCandidates {
				out = out[:maxCandidates]
			}
		}
	}
	return out
}

// score is the zero-mean NCC of tpl placed with its top-left at (x, y)
func score(hay plane, ii integral, tpl plane, zt []float64, tnorm float64, x, y int) float64 {
	n := float64(tpl.w * tpl.h)
	sum, sq := ii.window(x, y, tpl.w, tpl.h)
	variance := sq - sum*sum/n
	eps := 1e-6 * n

	if tnorm < eps || variance < eps {
		// A flat template only matches a flat window of the same brightness
		if tnorm < eps && variance < eps && math.Abs(sum/n-tpl.mean()) < 1 {
			return 1
		}
		return 0
	}

	var cross float64
	for ty := 0; ty < tpl.h; ty++ {
		row := hay.pix[(y+ty)*hay.w+x : (y+ty)*hay.w+x+tpl.w]
		trow := zt[ty*tpl.w : (ty+1)*tpl.w]
		for i, v := range row {
			cross += v * trow[i]
		}
	}
	return cross / math.Sqrt(variance*tnorm)
}

// plane is a luminance image with values 0..255
type plane struct {
	w, h int
	pix  []float64
}

func grayPlane(img image.Image) plane {
	b := img.Bounds()
	p := plane{w: b.Dx(), h: b.Dy(), pix: make([]float64, b.Dx()*b.Dy())}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				p.pix[y*p.w+x] = float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			}
		}
	case *image.RGBA:
		for y := 0; y < p.h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < p.w; x++ {
				px := src.Pix[off+x*4 : off+x*4+3]
				p.pix[y*p.w+x] = 0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])
			}
		}
	default:
		for y := 0; y < p.h; y++ {
			for x := 0; x < p.w; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				p.pix[y*p.w+x] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257
			}
		}
	}
	return p
}

// downsample box-averages s x s blocks, dropping partial blocks at the edges
func (p plane) downsample(s int) plane {
	out := plane{w: p.w / s, h: p.h / s}
	out.pix = make([]float64, out.w*out.h)
	area := float64(s * s)
	for y := 0; y < out.h; y++ {
		for x := 0; x < out.w; x++ {
			var sum float64
			for dy := 0; dy < s; dy++ {
				row := (y*s + dy) * p.w
				for dx := 0; dx < s; dx++ {
					sum += p.pix[row+x*s+dx]
				}
			}
			out.pix[y*out.w+x] = sum / area
		}
	}
	return out
}

func (p plane) mean() float64 {
	var sum float64
	for _, v := range p.pix {
		sum += v
	}
	return sum / float64(len(p.pix))
}

// zeroMean returns the template minus its mean and the sum of squares of that
func (p plane) zeroMean() ([]float64, float64) {
	m := p.mean()
	out := make([]float64, len(p.pix))
	var norm float64
	for i, v := range p.pix {
		d := v - m
		out[i] = d
		norm += d * d
	}
	return out, norm
}

// integral holds summed-area tables of values and squared values
type integral struct {
	w       int
	sum, sq []float64
}

func newIntegral(p plane) integral {
	w := p.w + 1
	ii := integral{w: w, sum: make([]float64, w*(p.h+1)), sq: make([]float64, w*(p.h+1))}
	for y := 0; y < p.h; y++ {
		var rowSum, rowSq float64
		for x := 0; x < p.w; x++ {
			v := p.pix[y*p.w+x]
			rowSum += v
			rowSq += v * v
			ii.sum[(y+1)*w+x+1] = ii.sum[y*w+x+1] + rowSum
			ii.sq[(y+1)*w+x+1] = ii.sq[y*w+x+1] + rowSq
		}
	}
	return ii
}

func (ii integral) window(x, y, w, h int) (sum, sq float64) {
	a, b := y*ii.w+x, y*ii.w+x+w
	c, d := (y+h)*ii.w+x, (y+h)*ii.w+x+w
	return ii.sum[d] - ii.sum[b] - ii.sum[c] + ii.sum[a], ii.sq[d] - ii.sq[b] - ii.sq[c] + ii.sq[a]
}
