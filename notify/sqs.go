package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"storefront-api/awsclient"
)

// SQSNotifier enqueues events for the e-mail worker.
type SQSNotifier struct {
	SQS      awsclient.SQSAPI
	QueueURL string
}

func NewSQSNotifier(client awsclient.SQSAPI, queueURL string) *SQSNotifier {
	return &SQSNotifier{SQS: client, QueueURL: queueURL}
}

func (n *SQSNotifier) OrderStatusChanged(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	msg := string(body)
	input := &sqs.SendMessageInput{
		QueueUrl:    &n.QueueURL,
		MessageBody: &msg,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type":   stringAttr("order_status_changed"),
			"order_number": stringAttr(ev.OrderNumber),
			"status":       stringAttr(ev.ToStatus),
		},
	}
	if _, err := n.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	dataType := "String"
	return sqstypes.MessageAttributeValue{DataType: &dataType, StringValue: &v}
}
