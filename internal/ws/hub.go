package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/sujalbistaa/mysite/internal/models"
)

// Message is the JSON envelope sent to every subscriber.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// VotePayload is the data of a "vote" message.
type VotePayload struct {
	QuestionID uint  `json:"question_id"`
	ChoiceID   uint  `json:"choice_id"`
	Votes      int64 `json:"votes"`
}

// Hub fans broadcast messages out to connected clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client: drop it rather than block everyone else.
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) add(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish encodes msg and queues it for every client.
// The message is dropped if the queue is full.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshalling WS message: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("WS broadcast queue full, dropping %s message", msg.Type)
	}
}

// BroadcastVote announces a choice's new tally.
func (h *Hub) BroadcastVote(choice *models.Choice) {
	h.Publish(Message{
		Type: "vote",
		Data: VotePayload{
			QuestionID: choice.QuestionID,
			ChoiceID:   choice.ID,
			Votes:      choice.Votes,
		},
	})
}
