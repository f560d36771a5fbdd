package adapters

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
)

type connectionProber struct {
	registry    *Registry
	credentials interfaces.CredentialService
}

// NewConnectionProber runs a full connect/close cycle against a config
// so bad hosts and credentials surface before the config is saved.
func NewConnectionProber(registry *Registry, credentials interfaces.CredentialService) interfaces.ConnectionProber {
	return &connectionProber{
		registry:    registry,
		credentials: credentials,
	}
}

func (p *connectionProber) Probe(ctx context.Context, config *models.EmailConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "connectionProber.Probe")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	span.SetTag("connection.type", config.ConnectionType.String())

	credential, err := p.credentials.Resolve(ctx, config)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	adapter, err := p.registry.Get(config.ConnectionType)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	session, err := adapter.Connect(ctx, config, credential)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return session.Close()
}
