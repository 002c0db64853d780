package shader

// ClipToPixel maps a clip-space position to pixel coordinates on a target of
// w by h pixels. The x axis grows right and the y axis grows down; the
// corners (-1, 1) and (1, -1) land on the centers of the first and last
// pixels.
func ClipToPixel(pos [2]float32, w, h int) (x, y float64) {
	x = (float64(pos[0]) + 1) / 2 * float64(w-1)
	y = (1 - float64(pos[1])) / 2 * float64(h-1)
	return x, y
}

// PixelVertices returns the pixel coordinates of [Vertices] on a w by h
// target, in draw order.
func PixelVertices(w, h int) [3][2]float64 {
	var out [3][2]float64
	for i, v := range Vertices {
		out[i][0], out[i][1] = ClipToPixel(v.Position, w, h)
	}
	return out
}
