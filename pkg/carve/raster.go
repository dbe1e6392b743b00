package carve

import (
	"image"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/cornmazecad/engine/pkg/engineerr"
	"github.com/cornmazecad/engine/pkg/geomkernel"
)

// MinContourPixelArea is the pixel-area threshold below which a traced
// contour is discarded as noise, per §4.5.
const MinContourPixelArea = 50

// ThresholdImage converts img into a binary foreground mask, row-major
// [y][x], true = foreground. If useAlpha is set the alpha channel drives
// the threshold (useful for PNG clip-art with transparency); otherwise
// the image is treated as grayscale via its luminance.
func ThresholdImage(img image.Image, useAlpha bool, threshold uint8) [][]bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([][]bool, h)
	for y := 0; y < h; y++ {
		row := make([]bool, w)
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			var v uint8
			if useAlpha {
				v = uint8(a >> 8)
			} else {
				lum := (299*r + 587*g + 114*bl) / 1000
				v = uint8(lum >> 8)
			}
			row[x] = v >= threshold
		}
		mask[y] = row
	}
	return mask
}

// RasterVectorization carves the outline of a thresholded, morphologically
// cleaned raster mask, per §4.5.
type RasterVectorization struct {
	Mask                [][]bool // row-major [y][x], true = foreground
	TargetWidthM        float64
	Position            orb.Point // world position the image center is moved to
	SimplifyTolerancePx float64
}

func (RasterVectorization) Kind() Kind { return KindRasterVectorization }

func (rv RasterVectorization) Build(k *geomkernel.Kernel) (Built, error) {
	if len(rv.Mask) == 0 || len(rv.Mask[0]) == 0 {
		return Built{}, engineerr.Newf("carve.RasterVectorization", engineerr.InvalidInput, "empty raster mask")
	}
	if rv.TargetWidthM <= 0 {
		return Built{}, engineerr.Newf("carve.RasterVectorization", engineerr.InvalidInput, "target width must be > 0, got %g", rv.TargetWidthM)
	}
	h := len(rv.Mask)
	w := len(rv.Mask[0])

	cleaned := morphOpen(morphClose(rv.Mask))

	polys := traceHierarchy(cleaned)
	if len(polys) == 0 {
		return Built{}, engineerr.Newf("carve.RasterVectorization", engineerr.GeometricFailure, "no contours survived vectorization")
	}

	simplifier := simplify.DouglasPeucker(rv.SimplifyTolerancePx)
	scale := rv.TargetWidthM / float64(w)
	cx, cy := float64(w)/2, float64(h)/2

	toWorld := func(r orb.Ring) orb.Ring {
		out := make(orb.Ring, len(r))
		for i, p := range r {
			out[i] = orb.Point{
				(p[0]-cx)*scale + rv.Position[0],
				(p[1]-cy)*scale + rv.Position[1],
			}
		}
		return out
	}

	var outWKT []geomkernel.WKT
	for _, p := range polys {
		rings := make(orb.Polygon, 0, len(p.rings))
		for _, r := range p.rings {
			simplified := simplifier.Ring(r)
			rings = append(rings, toWorld(simplified))
		}
		outWKT = append(outWKT, geomkernel.FromOrb(rings))
	}

	acc := outWKT[0]
	for _, w := range outWKT[1:] {
		u, err := k.Union(acc, w)
		if err != nil {
			return Built{}, engineerr.New("carve.RasterVectorization", engineerr.GeometricFailure, err)
		}
		acc = u
	}
	geom, err := geomkernel.ToOrb(acc)
	if err != nil {
		return Built{}, engineerr.New("carve.RasterVectorization", engineerr.GeometricFailure, err)
	}
	return Built{Eraser: geom}, nil
}

// contourPolygon is one traced outer contour plus its hole contours, all
// still in pixel space: rings[0] is the outer ring, rings[1:] are holes.
type contourPolygon struct {
	rings []orb.Ring
}

func morphClose(mask [][]bool) [][]bool {
	return erode3x3(dilate3x3(mask))
}

func morphOpen(mask [][]bool) [][]bool {
	return dilate3x3(erode3x3(mask))
}

func dilate3x3(mask [][]bool) [][]bool {
	h, w := len(mask), len(mask[0])
	out := make([][]bool, h)
	for y := 0; y < h; y++ {
		out[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			set := false
			for dy := -1; dy <= 1 && !set; dy++ {
				for dx := -1; dx <= 1 && !set; dx++ {
					ny, nx := y+dy, x+dx
					if ny >= 0 && ny < h && nx >= 0 && nx < w && mask[ny][nx] {
						set = true
					}
				}
			}
			out[y][x] = set
		}
	}
	return out
}

func erode3x3(mask [][]bool) [][]bool {
	h, w := len(mask), len(mask[0])
	out := make([][]bool, h)
	for y := 0; y < h; y++ {
		out[y] = make([]bool, w)
		for x := 0; x < w; x++ {
			all := true
			for dy := -1; dy <= 1 && all; dy++ {
				for dx := -1; dx <= 1 && all; dx++ {
					ny, nx := y+dy, x+dx
					if ny < 0 || ny >= h || nx < 0 || nx >= w || !mask[ny][nx] {
						all = false
					}
				}
			}
			out[y][x] = all
		}
	}
	return out
}

// traceHierarchy labels foreground components, traces each one's outer
// boundary, finds background components fully enclosed by it (holes),
// and traces those too, discarding anything below MinContourPixelArea.
func traceHierarchy(mask [][]bool) []contourPolygon {
	h, w := len(mask), len(mask[0])
	visited := make([][]bool, h)
	for y := range visited {
		visited[y] = make([]bool, w)
	}

	var polys []contourPolygon
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y][x] || visited[y][x] {
				continue
			}
			comp := floodFill(mask, visited, x, y, true)
			if len(comp) < MinContourPixelArea {
				continue
			}
			minX, minY, maxX, maxY := bbox(comp)
			outer := traceBoundary(mask, topLeftMost(comp), true)

			var holes []orb.Ring
			holeVisited := make(map[[2]int]bool)
			for py := minY; py <= maxY; py++ {
				for px := minX; px <= maxX; px++ {
					if mask[py][px] || holeVisited[[2]int{px, py}] {
						continue
					}
					region := floodFillBounded(mask, holeVisited, px, py, minX, minY, maxX, maxY)
					if len(region) == 0 || touchesBound(region, minX, minY, maxX, maxY) {
						continue
					}
					if len(region) < MinContourPixelArea {
						continue
					}
					holeRing := traceBoundary(invertedMask(mask, region), topLeftMost(region), true)
					holes = append(holes, holeRing)
				}
			}

			rings := append([]orb.Ring{outer}, holes...)
			polys = append(polys, contourPolygon{rings: rings})
		}
	}
	return polys
}

func bbox(pts [][2]int) (minX, minY, maxX, maxY int) {
	minX, minY = pts[0][0], pts[0][1]
	maxX, maxY = pts[0][0], pts[0][1]
	for _, p := range pts {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return
}

func topLeftMost(pts [][2]int) [2]int {
	best := pts[0]
	for _, p := range pts[1:] {
		if p[1] < best[1] || (p[1] == best[1] && p[0] < best[0]) {
			best = p
		}
	}
	return best
}

func floodFill(mask [][]bool, visited [][]bool, x, y int, value bool) [][2]int {
	h, w := len(mask), len(mask[0])
	var comp [][2]int
	stack := [][2]int{{x, y}}
	visited[y][x] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp = append(comp, p)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				ny, nx := p[1]+dy, p[0]+dx
				if ny < 0 || ny >= h || nx < 0 || nx >= w || visited[ny][nx] || mask[ny][nx] != value {
					continue
				}
				visited[ny][nx] = true
				stack = append(stack, [2]int{nx, ny})
			}
		}
	}
	return comp
}

func floodFillBounded(mask [][]bool, visited map[[2]int]bool, x, y, minX, minY, maxX, maxY int) [][2]int {
	var comp [][2]int
	stack := [][2]int{{x, y}}
	visited[[2]int{x, y}] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		comp = append(comp, p)
		for _, d := range [][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
			nx, ny := p[0]+d[0], p[1]+d[1]
			key := [2]int{nx, ny}
			if nx < minX || nx > maxX || ny < minY || ny > maxY || visited[key] || mask[ny][nx] {
				continue
			}
			visited[key] = true
			stack = append(stack, key)
		}
	}
	return comp
}

func touchesBound(region [][2]int, minX, minY, maxX, maxY int) bool {
	for _, p := range region {
		if p[0] == minX || p[0] == maxX || p[1] == minY || p[1] == maxY {
			return true
		}
	}
	return false
}

// invertedMask produces a mask where only the given background region is
// marked foreground, so traceBoundary can trace a hole's boundary with
// the same routine used for outer contours.
func invertedMask(mask [][]bool, region [][2]int) [][]bool {
	h, w := len(mask), len(mask[0])
	out := make([][]bool, h)
	for y := range out {
		out[y] = make([]bool, w)
	}
	for _, p := range region {
		out[p[1]][p[0]] = true
	}
	return out
}

// traceBoundary walks the Moore-neighborhood boundary of the foreground
// component containing start (the topmost-leftmost pixel of that
// component), returning pixel-center vertices of the closed ring.
func traceBoundary(mask [][]bool, start [2]int, value bool) orb.Ring {
	h, w := len(mask), len(mask[0])
	inBounds := func(x, y int) bool { return x >= 0 && x < w && y >= 0 && y < h }
	fg := func(x, y int) bool { return inBounds(x, y) && mask[y][x] == value }

	// 8-direction clockwise order starting west, per standard Moore
	// boundary tracing.
	dirs := [8][2]int{{-1, 0}, {-1, -1}, {0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}}

	cur := start
	backtrack := 0 // index of the direction we arrived from (start: pretend we came from the east, so backtrack points west)
	ring := orb.Ring{{float64(start[0]), float64(start[1])}}

	for iter := 0; iter < w*h*8+8; iter++ {
		found := -1
		for i := 0; i < 8; i++ {
			d := dirs[(backtrack+i)%8]
			nx, ny := cur[0]+d[0], cur[1]+d[1]
			if fg(nx, ny) {
				found = (backtrack + i) % 8
				cur = [2]int{nx, ny}
				break
			}
		}
		if found == -1 {
			// isolated single pixel
			break
		}
		if cur == start && len(ring) > 1 {
			break
		}
		ring = append(ring, orb.Point{float64(cur[0]), float64(cur[1])})
		// next search starts one step clockwise (in dirs order) past the
		// neighbor we just came from, which lies at index found+4.
		backtrack = (found + 5) % 8
	}
	ring = append(ring, ring[0])
	return ring
}
