package aws

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSProducer sends messages to one named queue. The queue URL is resolved
// on first use.
type SQSProducer struct {
	client *sqs.Client
	queue  string

	once     sync.Once
	queueURL *string
	err      error
}

func NewSQSProducer(cfg aws.Config, queue string) *SQSProducer {
	return &SQSProducer{client: sqs.NewFromConfig(cfg), queue: queue}
}

func (p *SQSProducer) resolve(ctx context.Context) (*string, error) {
	p.once.Do(func() {
		out, err := p.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
			QueueName: aws.String(p.queue),
		})
		if err != nil {
			log.Printf("Failed to retrieve queue URL for %s: %s\n", p.queue, err.Error())
			p.err = err
			return
		}
		p.queueURL = out.QueueUrl
	})
	return p.queueURL, p.err
}

func (p *SQSProducer) Produce(ctx context.Context, body string) error {
	qurl, err := p.resolve(ctx)
	if err != nil {
		return err
	}
	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    qurl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		log.Printf("[SQS] Error sending message: %s\n", err.Error())
		return err
	}
	log.Printf("[SQS] Sent message %s to %s\n", *out.MessageId, p.queue)
	return nil
}
