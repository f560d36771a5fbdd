package adapters

import (
	"time"

	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/config"
	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/enum"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/services/adapters/gmail"
	"github.com/KhushalSainS/flowbit/services/adapters/imapadapter"
	"github.com/KhushalSainS/flowbit/services/adapters/outlook"
)

// Registry maps connection types to their adapters. The set is closed;
// adding a protocol means adding a package here.
type Registry struct {
	adapters map[enum.ConnectionType]interfaces.MailAdapter
}

func NewRegistry(ingestionCfg *config.IngestionConfig) *Registry {
	connectTimeout := time.Duration(ingestionCfg.ConnectTimeoutSeconds) * time.Second
	fetchTimeout := time.Duration(ingestionCfg.FetchTimeoutSeconds) * time.Second

	return &Registry{
		adapters: map[enum.ConnectionType]interfaces.MailAdapter{
			enum.ConnectionTypeIMAP: imapadapter.NewIMAPAdapter(imapadapter.Options{
				MaxMessages:    ingestionCfg.MaxMessages,
				ConnectTimeout: connectTimeout,
				FetchTimeout:   fetchTimeout,
			}),
			enum.ConnectionTypeGmail: gmail.NewGmailAdapter(gmail.Options{
				MaxMessages: ingestionCfg.MaxMessages,
			}),
			enum.ConnectionTypeOutlook: outlook.NewOutlookAdapter(outlook.Options{
				MaxMessages:  ingestionCfg.OutlookMaxMessages,
				FetchTimeout: fetchTimeout,
			}),
		},
	}
}

func (r *Registry) Get(connectionType enum.ConnectionType) (interfaces.MailAdapter, error) {
	adapter, ok := r.adapters[connectionType]
	if !ok {
		return nil, errors.Wrapf(apperrors.ErrUnsupportedProtocol, "connection type %s", connectionType)
	}
	return adapter, nil
}
