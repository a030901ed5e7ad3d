package event

import (
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/docker/docker/api/types/events"
)

func fromEventsMessage(msg events.Message) (domain.NetworkEvent, error) {
	ev := domain.NetworkEvent{
		ContainerId: msg.Actor.Attributes["container"],
		Network:     msg.Actor.Attributes["name"],
		NetworkType: msg.Actor.Attributes["type"],
		EventType:   domain.EventType(msg.Action),
	}
	if !ev.EventType.IsValid() {
		return domain.NetworkEvent{}, NewUnsupportedEventTypeError(ev.EventType)
	}
	if ev.ContainerId == "" {
		return domain.NetworkEvent{}, &MissingAttributeError{Attribute: "container"}
	}
	return ev, nil
}
