package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"busline/internal/shared/config"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event Event
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != EventBookingPlaced || event.BookingID != "bk-1" || event.Amount != 500 {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	publisher := NewKafkaPublisher(producer, "booking-events")
	event := NewEvent(EventBookingPlaced, "user-1")
	event.BookingID = "bk-1"
	event.Amount = 500
	publisher.Publish(context.Background(), event)

	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_SendFailureIsSwallowed(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewKafkaPublisher(producer, "booking-events")
	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), NewEvent(EventPaymentIntentAbandoned, "user-1"))
	})
	assert.ErrorIs(t, publisher.send(NewEvent(EventPaymentCompleted, "user-1")), sarama.ErrOutOfBrokers)

	require.NoError(t, publisher.Close())
}

func TestNewPublisher_Disabled(t *testing.T) {
	publisher, err := NewPublisher(config.KafkaConfig{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, publisher)
	assert.NoError(t, publisher.Close())
}

func TestCreateHeaders(t *testing.T) {
	event := NewEvent(EventPaymentCompleted, "user-1")
	event.PaymentIntentID = "pi_123"

	headers := createHeaders(event)
	found := map[string]string{}
	for _, h := range headers {
		found[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, "payment.completed", found["event_type"])
	assert.Equal(t, "pi_123", found["payment_intent_id"])
	assert.NotContains(t, found, "booking_id")
}
