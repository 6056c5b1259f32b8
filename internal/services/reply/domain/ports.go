// Package domain declares the collaborators the reply workers call out to
package domain

import (
	"context"

	"meitanbot/internal/adapters/twitter"
	"meitanbot/internal/adapters/weather"
	"meitanbot/internal/core/event"
)

// Poster is the outbound slice of the platform client the workers need
type Poster interface {
	Reply(ctx context.Context, text string, inReplyTo int64) (twitter.Status, error)
	Retweet(ctx context.Context, id int64) (twitter.Status, error)
}

// Forecaster resolves weather replies
type Forecaster interface {
	Forecast(ctx context.Context, aheadDays int) (weather.Forecast, error)
}

// Corpus learns observed posts and builds generated replies
type Corpus interface {
	Learn(ctx context.Context, p event.Post) error
	SampleTemplateText(ctx context.Context, authorID event.UserID) (string, error)
}

// RouterPort classifies a post and queues its intents
type RouterPort interface {
	Route(ctx context.Context, p event.Post) int
}

// PrunerPort drops expired rate windows
type PrunerPort interface {
	PruneRates() int
}
