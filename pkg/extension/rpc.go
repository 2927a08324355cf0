package extension

import (
	"context"
	"fmt"
	"net/rpc"
	"os/exec"

	"github.com/hashicorp/go-plugin"
	"github.com/rs/zerolog"
)

// Handshake is used to verify that an extension provider binary and the host
// runtime are compatible.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "ATRIUM_EXTENSION",
	MagicCookieValue: "atrium-extension-provider-v1",
}

// ProviderPluginName is the dispense key for the provider implementation.
const ProviderPluginName = "provider"

// PluginMap is the map of plugins the host can dispense from a provider binary.
var PluginMap = map[string]plugin.Plugin{
	ProviderPluginName: &ProviderPlugin{},
}

// DescribeRequest carries the load parameters to a provider process.
// Resolved lists the names of the models resolved strictly before this load,
// mirroring what an in-process loader would see in its resolution context.
type DescribeRequest struct {
	Params   map[string]any
	Resolved []string
}

// Provider is implemented by extension provider binaries. It produces the
// extension model the binary contributes to the host runtime.
type Provider interface {
	Describe(req DescribeRequest) (*Model, error)
}

// ProviderPlugin is the go-plugin adapter for Provider.
type ProviderPlugin struct {
	Impl Provider
}

func (p *ProviderPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &ProviderRPCServer{Impl: p.Impl}, nil
}

func (p *ProviderPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ProviderRPCClient{client: c}, nil
}

// ProviderRPCServer is the RPC server that ProviderRPCClient talks to
type ProviderRPCServer struct {
	Impl Provider
}

func (s *ProviderRPCServer) Describe(req *DescribeRequest, resp *Model) error {
	model, err := s.Impl.Describe(*req)
	if err != nil {
		return err
	}
	if model == nil {
		return fmt.Errorf("provider returned no model")
	}
	*resp = *model
	return nil
}

// ProviderRPCClient is the RPC client that talks to ProviderRPCServer
type ProviderRPCClient struct {
	client *rpc.Client
}

func (c *ProviderRPCClient) Describe(req DescribeRequest) (*Model, error) {
	var resp Model
	if err := c.client.Call("Plugin.Describe", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

const (
	// RPCLoaderID identifies the subprocess provider loader.
	RPCLoaderID = "rpc"

	// ParamBinary names the provider binary relative to the plugin root.
	ParamBinary = "binary"
)

// RPCLoader loads an extension model by launching the plugin's provider
// binary as a subprocess and asking it to describe itself.
type RPCLoader struct {
	logger zerolog.Logger
}

// NewRPCLoader creates the subprocess provider loader.
func NewRPCLoader(logger zerolog.Logger) *RPCLoader {
	return &RPCLoader{
		logger: logger.With().Str("component", "rpc-loader").Logger(),
	}
}

// ID returns the identifier of the subprocess provider loader.
func (l *RPCLoader) ID() string {
	return RPCLoaderID
}

// Load spawns the provider binary named by the binary parameter, dispenses
// the provider over RPC and returns the model it describes. The provider
// process is always terminated before Load returns.
func (l *RPCLoader) Load(ctx context.Context, res Resources, rctx *ResolutionContext, params map[string]any) (*Model, error) {
	bin, err := stringParam(params, ParamBinary)
	if err != nil {
		return nil, err
	}

	binPath, ok := res.Find(bin)
	if !ok {
		return nil, fmt.Errorf("provider binary not found: %s", bin)
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(binPath),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
	})
	defer client.Kill()

	rpcClient, err := client.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to provider: %w", err)
	}

	raw, err := rpcClient.Dispense(ProviderPluginName)
	if err != nil {
		return nil, fmt.Errorf("failed to dispense provider: %w", err)
	}

	provider, ok := raw.(Provider)
	if !ok {
		return nil, fmt.Errorf("provider does not implement the extension contract")
	}

	model, err := provider.Describe(DescribeRequest{
		Params:   params,
		Resolved: rctx.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("provider describe failed: %w", err)
	}

	l.logger.Debug().
		Str("extension", model.Name).
		Str("binary", bin).
		Msg("Loaded extension model from provider")

	return model, nil
}
