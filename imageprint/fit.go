package imageprint

import (
	"image"

	"github.com/golang/glog"
	"github.com/nfnt/resize"
)

// fit shrinks img so that it fits the terminal. Cell based output spends two
// columns and one row per pixel; raster output is measured in pixels when the
// terminal reports them.
func fit(img image.Image, raster bool) image.Image {
	ts, err := GetTermSize()
	if err != nil {
		glog.V(1).Infof("no terminal size, printing at full size: %v", err)
		return img
	}
	if raster && ts.WSXPixel != 0 && ts.WSYPixel != 0 {
		return resize.Thumbnail(ts.WSXPixel/2, ts.WSYPixel/2, img, resize.Lanczos3)
	}
	if ts.WSCol < 2 || ts.WSRow < 2 {
		return img
	}
	return resize.Thumbnail(ts.WSCol/2, ts.WSRow-1, img, resize.NearestNeighbor)
}
