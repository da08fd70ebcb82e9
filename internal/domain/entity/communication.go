package entity

import "time"

// Communication channel types
const (
	CommunicationTypeEmail = "email"
	CommunicationTypeSMS   = "sms"
)

// Communication directions
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// ClientCommunication logs one message exchanged with a client.
type ClientCommunication struct {
	ID        int64
	ClientID  int64
	Type      string
	Direction string
	Subject   string
	Content   string
	CreatedAt time.Time
}
