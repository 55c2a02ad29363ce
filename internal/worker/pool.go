package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"classpulse-backend/internal/models"
	"classpulse-backend/internal/services"
	"classpulse-backend/internal/websocket"
)

// Pool drains the monitor event queue and republishes each event on the
// owning teacher's pub/sub channel, keeping dashboard fan-out off the
// ingestion request path.
type Pool struct {
	redis       *redis.Client
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d fan-out worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.EventQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var event models.MonitorEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			log.Printf("Worker %d: failed to parse event: %v", id, err)
			continue
		}

		channel := websocket.SessionChannel(event.TeacherID)
		if err := p.redis.Publish(ctx, channel, result[1]).Err(); err != nil {
			log.Printf("Worker %d: failed to publish %s event for session %s: %v",
				id, event.Type, event.SessionID, err)
		}
	}
}
