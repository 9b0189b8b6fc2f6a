package common

import (
	"bitlibro/src/controllers"
	awslib "bitlibro/src/lib/aws"
	"bitlibro/src/types"
	"context"
	"encoding/json"
	"log"
	"os"
	"time"
)

type SNSReservationEventPublisher struct {
	publisher *awslib.SNSPublisher
}

// NewReservationEventPublisher returns nil when RESERVATION_EVENTS_TOPIC_ARN is unset.
func NewReservationEventPublisher() controllers.ReservationEventPublisher {
	topicArn := os.Getenv("RESERVATION_EVENTS_TOPIC_ARN")
	if topicArn == "" {
		return nil
	}
	p, err := awslib.NewSNSPublisher(context.Background(), topicArn)
	if err != nil {
		log.Printf("[events] Publishing disabled: %s\n", err.Error())
		return nil
	}
	return &SNSReservationEventPublisher{publisher: p}
}

func ReservationEventMessage(evt types.ReservationEvent) (string, error) {
	b, err := json.Marshal(&evt)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PublishReservationEvent sends in the background; failures are only logged.
func (p *SNSReservationEventPublisher) PublishReservationEvent(ctx context.Context, evt types.ReservationEvent) {
	message, err := ReservationEventMessage(evt)
	if err != nil {
		log.Printf("[events] Error encoding %s: %s\n", evt.Type, err.Error())
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		id, err := p.publisher.Publish(ctx, evt.Type, message)
		if err != nil {
			log.Printf("[events] Error publishing %s for reservation %d: %s\n", evt.Type, evt.ReservationID, err.Error())
			return
		}
		log.Printf("[events] Published %s for reservation %d (%s)\n", evt.Type, evt.ReservationID, id)
	}()
}
