package mq

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/lamwh/microblog-backend/db/model"
	"github.com/lamwh/microblog-backend/env"
	"github.com/nsqio/go-nsq"
)

var (
	producer *nsq.Producer
	once     sync.Once
	initErr  error
)

// PostEvent is published to the post topic whenever a micropost is
// created. Downstream consumers (search indexers, notification
// pipelines) subscribe to it.
type PostEvent struct {
	PostID    uint      `json:"post_id"`
	UserID    uint      `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func getProducer() (*nsq.Producer, error) {
	once.Do(func() {
		cfg := nsq.NewConfig()
		producer, initErr = nsq.NewProducer(env.NSQD_TCP_ADDR, cfg)
	})
	return producer, initErr
}

// PublishPost publishes a PostEvent for m. When no nsqd is configured
// the call is a no-op, so the API works without the queue.
func PublishPost(m *model.Micropost) error {
	if env.NSQD_TCP_ADDR == "" {
		return nil
	}
	p, err := getProducer()
	if err != nil {
		return err
	}
	body, err := json.Marshal(&PostEvent{
		PostID:    m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return err
	}
	return p.Publish(env.POST_TOPIC, body)
}

// StopProducers flushes and stops the producer. Called on shutdown.
func StopProducers() {
	if producer != nil {
		producer.Stop()
	}
}
