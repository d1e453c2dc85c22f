package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	ParamURL    = "url"
	ParamWidth  = "width"
	ParamHeight = "height"
)

// ParseImageRequest builds an ImageRequest from query parameters. A missing url is
// an error, malformed dimensions fall back to 0.
func ParseImageRequest(query url.Values) (ImageRequest, error) {
	source := query.Get(ParamURL)
	if source == "" {
		return ImageRequest{}, fmt.Errorf("%w: %s", ErrMissingParameter, ParamURL)
	}

	return ImageRequest{
		SourceURL:    source,
		TargetWidth:  parseDimension(query.Get(ParamWidth)),
		TargetHeight: parseDimension(query.Get(ParamHeight)),
	}, nil
}

func parseDimension(value string) uint32 {
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0
	}

	return uint32(n)
}
