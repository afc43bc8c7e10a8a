package notify

import (
	"encoding/json"
	"log"
	"time"

	"cafepos-backend/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ordersExchange = "cafepos.orders"

// Publisher: Sipariş yaşam döngüsü olaylarını mutfak/bar ekranları için RabbitMQ'ya
// yayınlar. Sadece yayın yapar; bu çekirdekte tüketici veya kuyruk işleyici yoktur.
// nil Publisher güvenlidir, tüm yayın çağrıları no-op olur.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		ordersExchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

type orderEvent struct {
	Event     string             `json:"event"`
	OrderID   uint               `json:"order_id"`
	TableID   *uint              `json:"table_id,omitempty"`
	Status    models.OrderStatus `json:"status"`
	Total     float64            `json:"total"`
	Timestamp time.Time          `json:"timestamp"`
}

// publish: Best-effort yayın. Hata istek akışını bozmaz, sadece loglanır.
func (p *Publisher) publish(routingKey string, ev orderEvent) {
	if p == nil || p.channel == nil {
		return
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Sipariş olayı serileştirilemedi: %v", err)
		return
	}

	if err := p.channel.Publish(
		ordersExchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ev.Timestamp,
			Body:         body,
		},
	); err != nil {
		log.Printf("Sipariş olayı yayınlanamadı (%s): %v", routingKey, err)
	}
}

func (p *Publisher) OrderCreated(order *models.Order) {
	p.publish("order.created", orderEvent{
		Event:     "order.created",
		OrderID:   order.ID,
		TableID:   order.TableID,
		Status:    order.Status,
		Total:     order.Total,
		Timestamp: time.Now(),
	})
}

func (p *Publisher) OrderStatusChanged(order *models.Order) {
	p.publish("order.status_changed", orderEvent{
		Event:     "order.status_changed",
		OrderID:   order.ID,
		TableID:   order.TableID,
		Status:    order.Status,
		Total:     order.Total,
		Timestamp: time.Now(),
	})
}
