package event

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/streadway/amqp"
)

// Topics the engine publishes. Consumers (notification dispatch, analytics)
// bind on these routing keys.
const (
	TopicQuizGenerated      = "progress.quiz.generated"
	TopicQuizSubmitted      = "progress.quiz.submitted"
	TopicEvidenceRecorded   = "progress.evidence.recorded"
	TopicModuleCompleted    = "progress.module.completed"
	TopicCourseCompleted    = "progress.course.completed"
	TopicCertificateIssued  = "progress.certificate.issued"
	TopicCertificateRevoked = "progress.certificate.revoked"
)

// EventPublisher fans domain events out on a durable topic exchange. The
// routing key is the topic itself, so consumers can bind as narrowly as
// "progress.certificate.*" or as wide as "progress.#".
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logFile  *os.File
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	// Local audit trail; publishing proceeds even if the file is unavailable.
	logFile, err := os.OpenFile("event.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("event log file unavailable: %v", err)
		logFile = nil
	}

	return &EventPublisher{conn: conn, channel: ch, exchange: exchange, logFile: logFile}, nil
}

func (p *EventPublisher) Publish(topic string, payload interface{}) error {
	envelope := map[string]interface{}{
		"type":        topic,
		"payload":     payload,
		"occurred_at": time.Now().UTC(),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	log.Printf("[EVENT] %s: %v", topic, payload)
	if p.logFile != nil {
		p.logFile.Write(append(body, '\n'))
	}

	return p.channel.Publish(p.exchange, topic, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *EventPublisher) Close() {
	if p.logFile != nil {
		_ = p.logFile.Close()
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
