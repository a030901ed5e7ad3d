package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/errdefs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocker struct {
	mu          sync.Mutex
	summaries   []container.Summary
	inspect     map[string]container.InspectResponse
	inspectErr  map[string]error
	listErrs    []error
	listCalls   int
	pingErr     error
	lastListOpt container.ListOptions
}

func (f *fakeDocker) ContainerList(_ context.Context, opts container.ListOptions) ([]container.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListOpt = opts
	f.listCalls++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.summaries, nil
}

func (f *fakeDocker) ContainerInspect(_ context.Context, id string) (container.InspectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.inspectErr[id]; ok {
		return container.InspectResponse{}, err
	}
	resp, ok := f.inspect[id]
	if !ok {
		return container.InspectResponse{}, errdefs.NotFound(errors.New("no such container"))
	}
	return resp, nil
}

func (f *fakeDocker) Ping(context.Context) (types.Ping, error) {
	return types.Ping{}, f.pingErr
}

func (f *fakeDocker) DaemonHost() string { return "unix:///var/run/docker.sock" }

func inspectResponse(id, name, hostname string, running bool, nets map[string]*network.EndpointSettings) container.InspectResponse {
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			ID:    id,
			Name:  "/" + name,
			State: &container.State{Running: running},
		},
		Config: &container.Config{
			Hostname: hostname,
			Labels:   map[string]string{domain.ComposeServiceLabel: name + "-svc"},
		},
		NetworkSettings: &container.NetworkSettings{
			Networks: nets,
		},
	}
}

func newTestReader(cli dockerClient, steps int) *DockerReader {
	dr := NewDockerReader(cli, steps, true, zerolog.Nop())
	dr.backoff.Duration = time.Millisecond
	return dr
}

func TestDockerReader_Snapshot(t *testing.T) {
	cli := &fakeDocker{
		summaries: []container.Summary{{ID: "a"}, {ID: "b"}, {ID: "gone"}},
		inspect: map[string]container.InspectResponse{
			"a": inspectResponse("a", "web", "web01", true, map[string]*network.EndpointSettings{
				"bridge": {IPAddress: "172.17.0.2", Aliases: []string{"www"}, DNSNames: []string{"www", "web"}},
			}),
			"b": inspectResponse("b", "db", "db01", true, map[string]*network.EndpointSettings{
				"backend": {IPAddress: "10.0.0.3"},
				"broken":  nil,
			}),
		},
	}
	dr := newTestReader(cli, 1)

	records, err := dr.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"running"}, cli.lastListOpt.Filters.Get("status"))

	web := records[0]
	assert.Equal(t, "a", web.Id)
	assert.Equal(t, "web", web.Name)
	assert.Equal(t, "web01", web.Hostname)
	assert.Equal(t, "172.17.0.2", web.Networks["bridge"].IPAddress)
	assert.Equal(t, []string{"www", "web"}, web.Networks["bridge"].Aliases)

	db := records[1]
	assert.Equal(t, "b", db.Id)
	assert.Equal(t, []string{"backend"}, db.NetworkNames())
}

func TestDockerReader_SnapshotSkipsStoppedAndFailing(t *testing.T) {
	cli := &fakeDocker{
		summaries: []container.Summary{{ID: "a"}, {ID: "stopped"}, {ID: "err"}},
		inspect: map[string]container.InspectResponse{
			"a":       inspectResponse("a", "web", "web01", true, nil),
			"stopped": inspectResponse("stopped", "old", "old", false, nil),
		},
		inspectErr: map[string]error{"err": errors.New("boom")},
	}
	dr := newTestReader(cli, 1)

	records, err := dr.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Id)
}

func TestDockerReader_ListRetries(t *testing.T) {
	cli := &fakeDocker{
		summaries: []container.Summary{{ID: "a"}},
		inspect: map[string]container.InspectResponse{
			"a": inspectResponse("a", "web", "web01", true, nil),
		},
		listErrs: []error{errors.New("daemon busy"), nil},
	}
	dr := newTestReader(cli, 3)

	records, err := dr.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, cli.listCalls)
}

func TestDockerReader_ListExhaustsRetries(t *testing.T) {
	cli := &fakeDocker{
		listErrs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	dr := newTestReader(cli, 3)

	_, err := dr.Snapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	assert.Contains(t, err.Error(), "down")
	assert.Equal(t, 3, cli.listCalls)
}

func TestDockerReader_Inspect(t *testing.T) {
	cli := &fakeDocker{
		inspect: map[string]container.InspectResponse{
			"a":       inspectResponse("a", "web", "web01", true, nil),
			"stopped": inspectResponse("stopped", "old", "old", false, nil),
		},
	}
	dr := newTestReader(cli, 1)

	rec, err := dr.Inspect(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "web", rec.Name)

	_, err = dr.Inspect(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrContainerVanished)

	_, err = dr.Inspect(context.Background(), "stopped")
	assert.ErrorIs(t, err, domain.ErrContainerVanished)
}

func TestDockerReader_Ping(t *testing.T) {
	cli := &fakeDocker{}
	dr := newTestReader(cli, 1)
	require.NoError(t, dr.Ping(context.Background()))

	cli.pingErr = errors.New("connection refused")
	err := dr.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	assert.Contains(t, err.Error(), "unix:///var/run/docker.sock")
}

func TestDockerReader_DNSNamesOptIn(t *testing.T) {
	cli := &fakeDocker{
		inspect: map[string]container.InspectResponse{
			"a": inspectResponse("a", "web", "web01", true, map[string]*network.EndpointSettings{
				"bridge": {IPAddress: "172.17.0.2", Aliases: []string{"www"}, DNSNames: []string{"web", "a1b2c3"}},
			}),
		},
	}

	plain := NewDockerReader(cli, 1, false, zerolog.Nop())
	rec, err := plain.Inspect(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"www"}, rec.Networks["bridge"].Aliases)

	merged := NewDockerReader(cli, 1, true, zerolog.Nop())
	rec, err = merged.Inspect(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"www", "web", "a1b2c3"}, rec.Networks["bridge"].Aliases)
}

func TestMergeAliases(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, mergeAliases([]string{"a", "b"}, []string{"b", "c"}))
	assert.Equal(t, []string{"a"}, mergeAliases([]string{"a"}, nil))
	assert.Equal(t, []string{"x"}, mergeAliases(nil, []string{"x"}))
}
