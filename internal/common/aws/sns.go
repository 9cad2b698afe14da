// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"collection-points/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes every notice as JSON to a topic. The notice kind is
// set as the "kind" message attribute for subscription filtering.
type SNSNotifier struct {
	client   SNSService
	topicARN string
}

func NewSNSNotifier(cfg awssdk.Config, topicARN string) *SNSNotifier {
	return NewSNSNotifierWith(sns.NewFromConfig(cfg), topicARN)
}

func NewSNSNotifierWith(client SNSService, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (n *SNSNotifier) Notify(ctx context.Context, notice models.Notice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Subject:  awssdk.String(subjectFor(notice)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {DataType: awssdk.String("String"), StringValue: awssdk.String(string(notice.Kind))},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}
	return nil
}

func subjectFor(notice models.Notice) string {
	switch notice.Kind {
	case models.NoticePointCreated:
		return "Collection point created"
	case models.NoticeSubmissionFailed:
		return "Collection point creation failed"
	default:
		return "Collection point workflow notice"
	}
}
