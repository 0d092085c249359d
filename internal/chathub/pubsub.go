package chathub

import (
	"encoding/json"
	"log"

	"strangerlink/backend/internal/models"
)

// StartPubSubListener starts a goroutine that relays Redis pub/sub
// messages into the hub's delivery channel. Any server instance can
// publish; every instance holding a participant delivers.
func (m *ManagerService) StartPubSubListener() {
	go func() {
		pubsub := m.Storage.SubscribeToAllRooms()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var chatMsg models.ChatMessage
			if err := json.Unmarshal([]byte(msg.Payload), &chatMsg); err != nil {
				log.Printf("Error unmarshalling Redis message: %v", err)
				continue
			}
			m.PubSubCh <- chatMsg
		}
	}()
}
