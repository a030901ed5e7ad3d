package domain

type EventType string

const (
	EventTypeNetworkConnect    EventType = "connect"
	EventTypeNetworkDisconnect EventType = "disconnect"
)

func (et EventType) IsValid() bool {
	switch et {
	case EventTypeNetworkConnect,
		EventTypeNetworkDisconnect:
		return true
	}
	return false
}

// NetworkEvent is a container joining or leaving a network.
type NetworkEvent struct {
	ContainerId string
	Network     string
	NetworkType string
	EventType   EventType
}
