// Package canvas provides drawing primitives for the annotation canvas.
package canvas

import (
	"image"
	"image/color"

	"mini-annotator/pkg/geometry"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and common symbols.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'?': {0b111, 0b001, 0b010, 0b000, 0b010},
	'%': {0b101, 0b001, 0b010, 0b100, 0b101},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// getCharPattern returns the 3x5 pixel pattern for a character.
// Returns a zero pattern for unsupported characters.
func getCharPattern(ch rune) [5]uint8 {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0']
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if pattern, ok := letterPatterns[ch]; ok {
		return pattern
	}
	return [5]uint8{}
}

// draw is the raster drawing function. It composites the photo through
// the viewport transform and paints box overlays on top.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Fill with dark background (set alpha channel)
	for i := 0; i < len(output.Pix); i += 4 {
		output.Pix[i] = 0x20
		output.Pix[i+1] = 0x20
		output.Pix[i+2] = 0x20
		output.Pix[i+3] = 255
	}

	if ac.photo != nil {
		ac.compositePhoto(output, w, h)
	}

	ac.drawBoxes(output)

	if preview := ac.editor.Preview(); preview != nil {
		col := previewColor
		if ac.editor.BaseMode() {
			col = baseColor
		}
		ac.drawDashedRect(output, ac.editor.Viewport.RectToScreen(*preview), col)
	}

	return output
}

// compositePhoto draws the photo through the inverse viewport transform,
// nearest neighbor.
func (ac *AnnotationCanvas) compositePhoto(output *image.RGBA, w, h int) {
	src := ac.photo
	srcBounds := src.Bounds()
	vp := ac.editor.Viewport

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := vp.ToImage(geometry.NewPoint2D(float64(x), float64(y)))
			srcX := int(p.X) + srcBounds.Min.X
			srcY := int(p.Y) + srcBounds.Min.Y
			if srcX < srcBounds.Min.X || srcX >= srcBounds.Max.X ||
				srcY < srcBounds.Min.Y || srcY >= srcBounds.Max.Y {
				continue
			}
			output.Set(x, y, src.At(srcX, srcY))
		}
	}
}

// drawBoxes paints every committed box, its base region, and its label.
func (ac *AnnotationCanvas) drawBoxes(output *image.RGBA) {
	coll := ac.editor.Collection()
	selected := ac.editor.Selected()
	vp := ac.editor.Viewport

	for i := 0; i < coll.Len(); i++ {
		box := coll.At(i)
		col := boxColor(box, i == selected)

		screen := vp.RectToScreen(box.Bounds)
		thickness := 2
		if i == selected {
			thickness = 3
		}
		ac.drawRect(output, screen, col, thickness)

		if box.Base != nil {
			base := vp.RectToScreen(*box.Base)
			ac.drawRect(output, base, baseColor, 2)
			ac.drawStripes(output, base, baseColor)
		}

		if box.Label != "" {
			top := int(screen.Y) - labelMargin
			ac.drawPixelLabel(output, box.Label, int(screen.X)+labelMargin, top, col)
		}
	}
}

const labelMargin = 4

// drawRect draws a rectangle outline of the given thickness.
func (ac *AnnotationCanvas) drawRect(output *image.RGBA, r geometry.Rect, col color.RGBA, thickness int) {
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	bounds := output.Bounds()

	for t := 0; t < thickness; t++ {
		for x := x1; x <= x2; x++ {
			if x >= bounds.Min.X && x < bounds.Max.X {
				if y1+t >= bounds.Min.Y && y1+t < bounds.Max.Y {
					output.Set(x, y1+t, col)
				}
				if y2-t >= bounds.Min.Y && y2-t < bounds.Max.Y {
					output.Set(x, y2-t, col)
				}
			}
		}
		for y := y1; y <= y2; y++ {
			if y >= bounds.Min.Y && y < bounds.Max.Y {
				if x1+t >= bounds.Min.X && x1+t < bounds.Max.X {
					output.Set(x1+t, y, col)
				}
				if x2-t >= bounds.Min.X && x2-t < bounds.Max.X {
					output.Set(x2-t, y, col)
				}
			}
		}
	}
}

// drawDashedRect draws a rectangle outline with alternating pixels, used
// for the live drag preview.
func (ac *AnnotationCanvas) drawDashedRect(output *image.RGBA, r geometry.Rect, col color.RGBA) {
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	bounds := output.Bounds()

	for x := x1; x <= x2; x++ {
		if x < bounds.Min.X || x >= bounds.Max.X {
			continue
		}
		if (x+y1)%4 < 2 && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			output.Set(x, y1, col)
		}
		if (x+y2)%4 < 2 && y2 >= bounds.Min.Y && y2 < bounds.Max.Y {
			output.Set(x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		if (x1+y)%4 < 2 && x1 >= bounds.Min.X && x1 < bounds.Max.X {
			output.Set(x1, y, col)
		}
		if (x2+y)%4 < 2 && x2 >= bounds.Min.X && x2 < bounds.Max.X {
			output.Set(x2, y, col)
		}
	}
}

// drawStripes fills a rectangle with sparse diagonal stripes so the
// photo underneath stays readable.
func (ac *AnnotationCanvas) drawStripes(output *image.RGBA, r geometry.Rect, col color.RGBA) {
	x1, y1 := int(r.X), int(r.Y)
	x2, y2 := int(r.X+r.Width), int(r.Y+r.Height)
	bounds := output.Bounds()

	const interval = 8
	for y := y1; y <= y2; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := x1; x <= x2; x++ {
			if (x+y)%interval == 0 && x >= bounds.Min.X && x < bounds.Max.X {
				output.Set(x, y, col)
			}
		}
	}
}

// drawPixelLabel draws a label with the 3x5 pixel font, anchored at the
// bottom-left of (x, y).
func (ac *AnnotationCanvas) drawPixelLabel(output *image.RGBA, label string, x, y int, col color.RGBA) {
	scale := int(ac.editor.Viewport.Zoom * 2)
	if scale < 2 {
		scale = 2
	}
	if scale > 6 {
		scale = 6
	}

	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale
	startY := y - charHeight

	bounds := output.Bounds()

	for i, ch := range label {
		pattern := getCharPattern(ch)
		charX := x + i*(charWidth+spacing)

		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if (pattern[row] & (1 << (2 - c))) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := startY + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							output.Set(px, py, col)
						}
					}
				}
			}
		}
	}
}
