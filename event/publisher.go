// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package event

import (
	"context"

	"github.com/votechain/server/models"
)

// VotePublisher receives every durably recorded vote. Downstream
// consumers (tally dashboards, audit pipelines) are outside this repo.
type VotePublisher interface {
	Publish(ctx context.Context, vote models.VoteEvent) error
	Close() error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.VoteEvent) error { return nil }
func (NopPublisher) Close() error                                    { return nil }
