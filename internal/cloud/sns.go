package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSClient wraps AWS SNS for alert notifications.
type SNSClient struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

func NewSNSClient(region, topicArn string) (*SNSClient, error) {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSClient{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

// SendAlert publishes one notification to the configured topic.
func (c *SNSClient) SendAlert(subject, message string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(c.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	}

	if _, err := c.svc.Publish(c.ctx, input); err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}

// SendTheftAlert formats and publishes a loss-classification alert.
func (c *SNSClient) SendTheftAlert(classification string, powerLoss, lossPercentage float64) error {
	subject := fmt.Sprintf("Power Monitor Alert: %s", classification)
	message := fmt.Sprintf(
		"Street Segment Alert\n\n"+
			"Status: %s\n"+
			"Power Loss: %.2f W\n"+
			"Loss Percentage: %.1f%%\n"+
			"Time: %s\n\n"+
			"Please investigate the street segment.",
		classification,
		powerLoss,
		lossPercentage,
		time.Now().Format(time.RFC3339),
	)

	return c.SendAlert(subject, message)
}

// SendOfflineAlert notifies that a meter stopped reporting.
func (c *SNSClient) SendOfflineAlert(meterID string, silentFor time.Duration) error {
	subject := "Power Monitor: Meter Offline"
	message := fmt.Sprintf(
		"Meter %s has not reported for %s and was marked offline.\n"+
			"Time: %s",
		meterID,
		silentFor.Round(time.Second),
		time.Now().Format(time.RFC3339),
	)

	return c.SendAlert(subject, message)
}
