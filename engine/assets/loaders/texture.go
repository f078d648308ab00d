package loaders

import (
	"image"
	_ "image/jpeg" // register decoders for the formats the engine accepts
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// TextureLoadParams bounds the decoded image. Textures larger than
// MaxDimension on either side are scaled down to fit, preserving aspect.
type TextureLoadParams struct {
	MaxDimension uint32
}

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file) // PNG or JPEG
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if p, ok := params.(TextureLoadParams); ok && p.MaxDimension > 0 {
		width, height = clampDimensions(width, height, int(p.MaxDimension))
	}

	// Samplers consume tightly packed RGBA regardless of the source
	// format; scale and convert in one pass.
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, bounds, draw.Src, nil)

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(rgba.Pix)),
		Data:     rgba,
	}, nil
}

func (tl *TextureLoader) Unload(*metadata.Resource) error {
	return nil
}

// clampDimensions shrinks (w, h) proportionally so neither exceeds max.
func clampDimensions(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		return max, h * max / w
	}
	return w * max / h, max
}
