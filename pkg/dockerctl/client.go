// Package dockerctl exposes container management tools backed by the Docker
// Engine API. The daemon connection is established once at startup; when the
// daemon is unreachable the tool set runs in a permanent degraded state and
// every call reports the outage instead of performing the action.
package dockerctl

import (
	"context"
	"log/slog"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
)

// DaemonClient is the slice of the Engine API this server uses. The real
// *client.Client satisfies it; tests substitute a fake.
type DaemonClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
}

// Connect builds an Engine API client from the environment and verifies the
// daemon is reachable. Connection details (host, TLS, API version) come from
// the standard DOCKER_* variables.
func Connect(ctx context.Context, logger *slog.Logger) (DaemonClient, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create docker client")
	}
	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, errors.Wrap(err, "docker daemon is not reachable")
	}
	logger.Info("Connected to docker daemon", slog.String("host", cli.DaemonHost()))
	return cli, nil
}
