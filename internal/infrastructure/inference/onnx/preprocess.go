package onnx

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// Preprocess loads a page raster as a 1xSxSx3 NHWC tensor: grayscale
// replicated over three channels, resized to S and scaled to [0,1].
func Preprocess(path string, size int) ([]float32, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page raster: %w", err)
	}
	gray := imaging.Resize(imaging.Grayscale(img), size, size, imaging.Linear)

	out := make([]float32, 0, size*size*3)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := float32(gray.Pix[y*gray.Stride+x*4]) / 255
			out = append(out, v, v, v)
		}
	}
	return out, nil
}
