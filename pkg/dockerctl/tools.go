package dockerctl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/errdefs"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"

	"github.com/devtoolbox/devtoolbox-mcp/pkg/mcp/registry"
)

// daemonUnavailableMsg is returned by every tool when no daemon connection
// was established at startup.
const daemonUnavailableMsg = "Docker is not running or is not installed."

const shortIDLength = 12

// untaggedImage is the sentinel shown when a container's image carries no tag.
const untaggedImage = "N/A"

// ContainerSummary is a read-only projection of daemon-owned container state.
type ContainerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Status string `json:"status"`
}

// ToolSet holds the docker control handlers. A nil client means the daemon
// was unreachable at startup; the degraded state lasts until process restart.
type ToolSet struct {
	client DaemonClient
	logger *slog.Logger
}

func NewToolSet(client DaemonClient, logger *slog.Logger) *ToolSet {
	if client == nil {
		logger.Warn("Docker daemon unavailable, container tools will report errors")
	}
	return &ToolSet{client: client, logger: logger}
}

// Register attaches list_containers and stop_container to the registry builder.
func (t *ToolSet) Register(b *registry.Builder) {
	b.Register(mcp.NewTool("list_containers",
		mcp.WithDescription("Lists all Docker containers."),
		mcp.WithBoolean("all_containers",
			mcp.Description("Include stopped containers as well as running ones."),
			mcp.DefaultBool(false),
		),
	), t.handleListContainers)

	b.Register(mcp.NewTool("stop_container",
		mcp.WithDescription("Stops a running Docker container by its ID."),
		mcp.WithString("container_id",
			mcp.Required(),
			mcp.Description("ID or name of the container to stop."),
		),
	), t.handleStopContainer)
}

func (t *ToolSet) handleListContainers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.client == nil {
		return jsonResult([]map[string]string{{"error": daemonUnavailableMsg}}), nil
	}

	all, _ := req.GetArguments()["all_containers"].(bool)
	containers, err := t.client.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return errorResult(err), nil
	}

	summaries := make([]ContainerSummary, 0, len(containers))
	for _, ctr := range containers {
		summaries = append(summaries, ContainerSummary{
			ID:     shortID(ctr.ID),
			Name:   displayName(ctr.Names),
			Image:  imageTag(ctr.Image),
			Status: ctr.State,
		})
	}
	return jsonResult(summaries), nil
}

func (t *ToolSet) handleStopContainer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.client == nil {
		return jsonResult(map[string]string{"error": daemonUnavailableMsg}), nil
	}

	containerID, ok := req.GetArguments()["container_id"].(string)
	if !ok || containerID == "" {
		return errorResult(errors.New("invalid or missing container_id")), nil
	}

	// Resolve first so an unknown identifier is reported as not-found rather
	// than whatever the stop endpoint happens to say about it.
	if _, err := t.client.ContainerInspect(ctx, containerID); err != nil {
		if errdefs.IsNotFound(err) {
			return errorResult(errors.Errorf("Container %s not found.", containerID)), nil
		}
		return errorResult(err), nil
	}

	if err := t.client.ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		if errdefs.IsNotFound(err) {
			return errorResult(errors.Errorf("Container %s not found.", containerID)), nil
		}
		return errorResult(err), nil
	}

	t.logger.Info("Stopped container", slog.String("container_id", containerID))
	return jsonResult(map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Container %s stopped.", containerID),
	}), nil
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func displayName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.TrimPrefix(names[0], "/")
}

func imageTag(image string) string {
	if image == "" || strings.HasPrefix(image, "sha256:") {
		return untaggedImage
	}
	return image
}

func errorResult(err error) *mcp.CallToolResult {
	return jsonResult(map[string]string{"status": "error", "message": err.Error()})
}

func jsonResult(v any) *mcp.CallToolResult {
	payload, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultText(`{"status":"error","message":"failed to encode result"}`)
	}
	return mcp.NewToolResultText(string(payload))
}
