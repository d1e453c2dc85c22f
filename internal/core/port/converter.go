package port

import (
	"avifd/internal/core/domain"
	"context"
)

type ImageTransformer interface {
	// Transform decodes raw image bytes, resizes them to width x height when both are non-zero and encodes the
	// result into the output format.
	Transform(raw []byte, width, height uint32) (domain.EncodedImage, error)
}

type ImageConverter interface {
	// Convert returns the encoded image for req along with whether it was served from the cache.
	Convert(ctx context.Context, req domain.ImageRequest) (domain.ConvertResult, error)
}
