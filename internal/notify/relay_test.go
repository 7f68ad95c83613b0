package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/redis/go-redis/v9"
)

type fakePublisher struct {
	channel string
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)

	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisRelay_PublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	r := NewRedisRelay(pub, "posboard:orders")
	r.now = func() time.Time { return time.Unix(100, 0) }

	if err := r.Notify(context.Background()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if pub.channel != "posboard:orders" {
		t.Fatalf("channel=%q", pub.channel)
	}

	var ev Event
	if err := json.Unmarshal(pub.payload, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != OrdersUpdated || !ev.At.Equal(time.Unix(100, 0)) {
		t.Fatalf("event=%+v", ev)
	}
}

func TestRedisRelay_ReturnsPublishError(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewRedisRelay(&fakePublisher{err: boom}, "c")

	if err := r.Notify(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}

func TestKafkaRelay_ProducesEvent(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != OrdersUpdated {
			return errors.New("unexpected event type " + ev.Type)
		}
		return nil
	})

	k := NewKafkaRelayWithProducer(sp, "orders-changed")
	if err := k.Notify(context.Background()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if err := k.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestKafkaRelay_ReturnsSendError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k := NewKafkaRelayWithProducer(sp, "orders-changed")
	if err := k.Notify(context.Background()); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("err=%v", err)
	}
	_ = k.Close()
}
