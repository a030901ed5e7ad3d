package app

import "context"

type pinger interface {
	Ping(ctx context.Context) error
	Endpoint() string
}

type cleaner interface {
	Cleanup(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}
