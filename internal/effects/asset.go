package effects

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrInvalidAsset is returned for rasters that are missing, empty or have
// no alpha channel.
var ErrInvalidAsset = errors.New("invalid asset")

// Asset is a BGRA raster drawn as the core of the energy ball.
type Asset struct {
	mat gocv.Mat
}

// LoadAsset reads a PNG (or any format with alpha) from path.
func LoadAsset(path string) (*Asset, error) {
	mat := gocv.IMRead(path, gocv.IMReadUnchanged)
	asset, err := NewAsset(mat)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load asset %s", path)
	}
	return asset, nil
}

// LoadFirstAsset tries each path in order and returns the first that loads.
func LoadFirstAsset(paths ...string) (*Asset, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if asset, err := LoadAsset(path); err == nil {
			return asset, nil
		}
	}
	return nil, ErrInvalidAsset
}

// NewAsset takes ownership of mat, which must be a non-empty 4-channel
// 8-bit image. mat is closed on error.
func NewAsset(mat gocv.Mat) (*Asset, error) {
	if mat.Empty() || mat.Type() != gocv.MatTypeCV8UC4 {
		mat.Close()
		return nil, ErrInvalidAsset
	}
	return &Asset{mat: mat}, nil
}

// Valid reports whether the asset can be drawn. A nil asset is not valid.
func (a *Asset) Valid() bool {
	return a != nil && !a.mat.Empty()
}

// Size returns the raster width and height.
func (a *Asset) Size() image.Point {
	if !a.Valid() {
		return image.Point{}
	}
	return image.Pt(a.mat.Cols(), a.mat.Rows())
}

// Close releases the raster.
func (a *Asset) Close() error {
	if a == nil {
		return nil
	}
	return a.mat.Close()
}

// placement clips a w x h overlay centred at center against a cols x rows
// frame. It returns the destination rectangle in the frame and the
// matching source rectangle in the overlay.
func placement(cols, rows, w, h int, center image.Point) (dst, src image.Rectangle, ok bool) {
	origin := image.Pt(center.X-w/2, center.Y-h/2)
	full := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}

	dst = clipRect(full, cols, rows)
	if dst.Empty() {
		return image.Rectangle{}, image.Rectangle{}, false
	}
	src = dst.Sub(origin)
	return dst, src, true
}

// Composite alpha-blends the asset onto dst, scaled so its longer side is
// size pixels and centred at center. It reports whether anything was
// drawn; an invalid asset or an overlay fully outside dst draws nothing.
func (a *Asset) Composite(dst *gocv.Mat, center image.Point, size int) bool {
	if !a.Valid() || dst.Empty() || size <= 0 || dst.Channels() != 3 {
		return false
	}

	scale := float64(size) / float64(max(a.mat.Cols(), a.mat.Rows()))
	w := max(int(float64(a.mat.Cols())*scale), 1)
	h := max(int(float64(a.mat.Rows())*scale), 1)

	target, source, ok := placement(dst.Cols(), dst.Rows(), w, h, center)
	if !ok {
		return false
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(a.mat, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationArea)

	crop := resized.Region(source)
	defer crop.Close()
	overlay := crop.Clone()
	defer overlay.Close()

	roi := dst.Region(target)
	defer roi.Close()
	base := roi.Clone()
	defer base.Close()

	over, err := overlay.DataPtrUint8()
	if err != nil {
		return false
	}
	under, err := base.DataPtrUint8()
	if err != nil {
		return false
	}
	blendAlpha(under, over)

	base.CopyTo(&roi)
	return true
}

// blendAlpha blends BGRA pixels in over onto BGR pixels in under in place.
func blendAlpha(under, over []uint8) {
	n := min(len(under)/3, len(over)/4)
	for i := 0; i < n; i++ {
		alpha := int(over[i*4+3])
		if alpha == 0 {
			continue
		}
		inv := 255 - alpha
		for c := 0; c < 3; c++ {
			u := int(under[i*3+c])
			o := int(over[i*4+c])
			under[i*3+c] = uint8((o*alpha + u*inv + 127) / 255)
		}
	}
}
