package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &SESMailer{client: client, sender: "noreply@twittor.local"}

	err := m.Send(context.Background(), Message{
		Subject:    "Hello",
		Recipients: []string{"alice@example.com"},
		TextBody:   "plain",
		HTMLBody:   "<p>html</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, client.input)

	assert.Equal(t, "noreply@twittor.local", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Hello", aws.ToString(client.input.Message.Subject.Data))
	assert.Equal(t, "plain", aws.ToString(client.input.Message.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(client.input.Message.Body.Html.Data))
}

func TestSESMailer_SendError(t *testing.T) {
	awsErr := errors.New("throttled")
	m := &SESMailer{client: &fakeSES{err: awsErr}, sender: "noreply@twittor.local"}

	err := m.Send(context.Background(), Message{Subject: "Hello", Recipients: []string{"a@example.com"}})
	assert.ErrorIs(t, err, awsErr)
}

func TestMailers_RejectEmptyRecipients(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, (&SESMailer{client: &fakeSES{}}).Send(ctx, Message{Subject: "x"}), ErrNoRecipients)
	assert.ErrorIs(t, NewLogMailer().Send(ctx, Message{Subject: "x"}), ErrNoRecipients)
	assert.NoError(t, NewLogMailer().Send(ctx, Message{Subject: "x", Recipients: []string{"a@example.com"}}))
}
