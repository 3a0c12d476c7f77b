package client

import (
	"context"
)

// getWithQueuedRetry performs a request and, if BGG answers with a queued
// envelope, re-issues the identical request exactly once after an extra
// QueuedRetryPause. A second envelope is returned as-is; the caller decides
// what an unfinished listing means.
func (c *Client) getWithQueuedRetry(ctx context.Context, endpoint, rawURL string) (Document, error) {
	doc, err := c.get(ctx, endpoint, rawURL, 0)
	if err != nil || doc.Kind != DocumentQueued {
		return doc, err
	}

	bggQueuedResponsesTotal.WithLabelValues(endpoint).Inc()
	c.logger.Info().
		Str("endpoint", endpoint).
		Str("message", doc.Message).
		Dur("retry_pause", c.config.QueuedRetryPause).
		Msg("Request queued by BGG, retrying once")

	doc, err = c.get(ctx, endpoint, rawURL, c.config.QueuedRetryPause)
	if err != nil {
		return doc, err
	}

	if doc.Kind == DocumentQueued {
		bggQueuedResponsesTotal.WithLabelValues(endpoint).Inc()
		bggQueuedRetryExhaustedTotal.Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Str("message", doc.Message).
			Msg("Request still queued after retry, returning empty result")
	} else {
		c.logger.Info().
			Str("endpoint", endpoint).
			Str("document", doc.Kind.String()).
			Msg("Request succeeded after queued retry")
	}

	return doc, nil
}
