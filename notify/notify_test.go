package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{}, nil
}

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func sampleEvent() OrderEvent {
	return OrderEvent{
		OrderID:     7,
		OrderNumber: "ORD-0001",
		AccountID:   3,
		Name:        "Alex",
		Phone:       "0711234567",
		FromStatus:  "shipped",
		ToStatus:    "delivered",
	}
}

func TestSQSNotifier_SendsEventBody(t *testing.T) {
	fake := &fakeSQS{}
	n := NewSQSNotifier(fake, "https://sqs.local/queue")

	require.NoError(t, n.OrderStatusChanged(context.Background(), sampleEvent()))
	require.Len(t, fake.inputs, 1)

	in := fake.inputs[0]
	assert.Equal(t, "https://sqs.local/queue", *in.QueueUrl)
	var got OrderEvent
	require.NoError(t, json.Unmarshal([]byte(*in.MessageBody), &got))
	assert.Equal(t, "ORD-0001", got.OrderNumber)
	assert.Equal(t, "delivered", *in.MessageAttributes["status"].StringValue)
}

func TestSQSNotifier_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	n := NewSQSNotifier(&fakeSQS{err: boom}, "q")
	err := n.OrderStatusChanged(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, boom)
}

func TestTelegramNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := &TelegramNotifier{bot: sender, chatID: 42}

	require.NoError(t, n.OrderStatusChanged(context.Background(), sampleEvent()))
	require.Len(t, sender.sent, 1)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "ORD-0001")
	assert.Contains(t, msg.Text, "shipped → delivered")
}

func TestFormatAlert_NewOrder(t *testing.T) {
	ev := sampleEvent()
	ev.FromStatus = ""
	ev.ToStatus = "pending"
	ev.Note = "leave at the door"
	text := FormatAlert(ev)
	assert.Contains(t, text, "new → pending")
	assert.Contains(t, text, "leave at the door")
}

func TestMulti_JoinsErrors(t *testing.T) {
	boom := errors.New("queue down")
	sender := &fakeSender{}
	m := Multi{NewSQSNotifier(&fakeSQS{err: boom}, "q"), &TelegramNotifier{bot: sender, chatID: 1}, Nop{}}

	err := m.OrderStatusChanged(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sender.sent, 1, "a failing notifier must not stop the others")
}
