// Package camera maps the walled arena floor onto the drivescope viewport.
package camera

// Camera is a pan and zoom view of the arena. Arena coordinates are
// centimetres; screen coordinates are pixels.
type Camera struct {
	// Center of the view in arena coordinates
	X, Y float32

	// Pixels per centimetre
	Zoom float32

	ViewportW, ViewportH float32

	// Arena side length; the view never leaves the walls
	ArenaSize float32

	MinZoom, MaxZoom float32
}

// New creates a camera that fits the whole arena in the viewport.
func New(viewportW, viewportH, arenaSize float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		ArenaSize: arenaSize,
	}
	c.MinZoom = fitZoom(viewportW, viewportH, arenaSize)
	c.MaxZoom = c.MinZoom * 8
	c.Reset()
	return c
}

// fitZoom is the zoom at which the arena fills the shorter viewport side.
func fitZoom(w, h, size float32) float32 {
	if size <= 0 {
		return 1
	}
	side := w
	if h < side {
		side = h
	}
	return side / size
}

// WorldToScreen converts arena coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to arena coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// Contains reports whether an arena point lies inside the walls.
func (c *Camera) Contains(wx, wy float32) bool {
	return wx >= 0 && wy >= 0 && wx <= c.ArenaSize && wy <= c.ArenaSize
}

// Scale converts an arena length to pixels.
func (c *Camera) Scale(length float32) float32 {
	return length * c.Zoom
}

// Resize updates viewport dimensions and the zoom floor.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = fitZoom(viewportW, viewportH, c.ArenaSize)
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampCenter()
}

// Pan moves the view by a screen-pixel delta. The center stays on the floor.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Follow centers the view on an arena point.
func (c *Camera) Follow(wx, wy float32) {
	c.X, c.Y = wx, wy
	c.clampCenter()
}

// Reset shows the whole arena.
func (c *Camera) Reset() {
	c.X = c.ArenaSize / 2
	c.Y = c.ArenaSize / 2
	c.Zoom = c.MinZoom
}

func (c *Camera) clampCenter() {
	c.X = clamp(c.X, 0, c.ArenaSize)
	c.Y = clamp(c.Y, 0, c.ArenaSize)
}

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
