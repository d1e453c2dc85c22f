package port

import "context"

type Fetcher interface {
	// Fetch retrieves the raw bytes behind url with a single GET request.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
