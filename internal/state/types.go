package state

import (
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
)

type containerState struct {
	Record      domain.ContainerRecord
	LastUpdated time.Time
}
