package file

import (
	"avifd/internal/core/domain"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Fetcher downloads source images over HTTP.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher using client, or http.DefaultClient when client is nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &Fetcher{client: client}
}

// Fetch returns the body behind url. The status code is not inspected, a non-image body fails in decoding.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating request: %w: %w", domain.ErrFetchFailed, err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error executing request: %w: %w", domain.ErrFetchFailed, err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Debug().Int("status", res.StatusCode).Str("url", url).Msg("non-OK status on download")
	}

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("error reading response: %w: %w", domain.ErrReadBodyFailed, err)
		log.Error().Err(err).Str("url", url).Send()
		return nil, err
	}

	log.Debug().Int("bytes", len(buf)).Str("url", url).Msg("downloaded source")

	return buf, nil
}
