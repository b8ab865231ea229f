// Package camera provides a 2D camera for viewing the bounded grid.
package camera

// Camera controls the viewport into the grid. World coordinates are pixels
// at zoom 1, with each cell CellSize pixels wide. The view is clamped so it
// never scrolls past the grid edges.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid size in cells and pixel size of one cell at zoom 1
	Cols, Rows int
	CellSize   float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on a cols x rows grid, zoomed to fit.
func New(viewportW, viewportH float32, cols, rows int, cellSize float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Cols:      cols,
		Rows:      rows,
		CellSize:  cellSize,
		MaxZoom:   8.0,
	}
	c.MinZoom = c.fitZoom() / 2
	c.Reset()
	return c
}

// WorldW returns the grid width in world coordinates.
func (c *Camera) WorldW() float32 { return float32(c.Cols) * c.CellSize }

// WorldH returns the grid height in world coordinates.
func (c *Camera) WorldH() float32 { return float32(c.Rows) * c.CellSize }

// fitZoom returns the zoom at which the whole grid fits the viewport.
func (c *Camera) fitZoom() float32 {
	return min(c.ViewportW/c.WorldW(), c.ViewportH/c.WorldH())
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// CellToScreen returns the screen position of a cell's top-left corner and
// the on-screen cell size.
func (c *Camera) CellToScreen(x, y int) (sx, sy, size float32) {
	sx, sy = c.WorldToScreen(float32(x)*c.CellSize, float32(y)*c.CellSize)
	return sx, sy, c.CellSize * c.Zoom
}

// ScreenToCell returns the cell under a screen position, or false when the
// position is off the grid.
func (c *Camera) ScreenToCell(sx, sy float32) (x, y int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	if wx < 0 || wy < 0 || wx >= c.WorldW() || wy >= c.WorldH() {
		return 0, 0, false
	}
	return int(wx / c.CellSize), int(wy / c.CellSize), true
}

// IsCellVisible reports whether any part of cell (x, y) is on screen.
func (c *Camera) IsCellVisible(x, y int) bool {
	sx, sy, size := c.CellToScreen(x, y)
	return sx+size >= 0 && sy+size >= 0 && sx <= c.ViewportW && sy <= c.ViewportH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom() / 2
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampPosition()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampPosition()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// CenterOnCell moves the camera to the center of cell (x, y).
func (c *Camera) CenterOnCell(x, y int) {
	c.X = (float32(x) + 0.5) * c.CellSize
	c.Y = (float32(y) + 0.5) * c.CellSize
	c.clampPosition()
}

// Reset centers the camera and zooms to fit the grid.
func (c *Camera) Reset() {
	c.X = c.WorldW() / 2
	c.Y = c.WorldH() / 2
	c.Zoom = clamp(c.fitZoom(), c.MinZoom, c.MaxZoom)
}

// clampPosition keeps the grid center reachable: the camera center may not
// leave the grid rectangle.
func (c *Camera) clampPosition() {
	c.X = clamp(c.X, 0, c.WorldW())
	c.Y = clamp(c.Y, 0, c.WorldH())
}

// VisibleCells returns the inclusive cell range on screen, clamped to the grid.
func (c *Camera) VisibleCells() (x0, y0, x1, y1 int) {
	wx0, wy0 := c.ScreenToWorld(0, 0)
	wx1, wy1 := c.ScreenToWorld(c.ViewportW, c.ViewportH)

	x0 = clampInt(int(wx0/c.CellSize), 0, c.Cols-1)
	y0 = clampInt(int(wy0/c.CellSize), 0, c.Rows-1)
	x1 = clampInt(int(wx1/c.CellSize), 0, c.Cols-1)
	y1 = clampInt(int(wy1/c.CellSize), 0, c.Rows-1)
	return
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
