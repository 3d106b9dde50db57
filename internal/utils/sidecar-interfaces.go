// This package is mainly interfaces used elsewhere in the codebase.
// All of these are used for easier mocking and testing
package utils

import (
	"context"

	dapr "github.com/dapr/go-sdk/client"
)

type PublishEventOption = dapr.PublishEventOption

// Publisher pushes events on a pub/sub topic
type Publisher interface {
	PublishEvent(ctx context.Context, pubsubName string, topicName string, data interface{}, opts ...PublishEventOption) error
}
