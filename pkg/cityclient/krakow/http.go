package krakow

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cenkalti/backoff/v4"
)

const userAgent = "transitdb/1.0"

func httpGetBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func httpGetString(ctx context.Context, url string) (string, error) {
	body, err := httpGetBytes(ctx, url)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// httpGetBytesWithRetry retries transient fetch failures with exponential
// backoff. The upstream GTFS servers regularly drop connections mid-transfer.
func httpGetBytesWithRetry(ctx context.Context, url string) ([]byte, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)

	return backoff.RetryWithData(func() ([]byte, error) {
		body, err := httpGetBytes(ctx, url)
		if err != nil {
			return nil, err
		}
		return body, nil
	}, policy)
}
