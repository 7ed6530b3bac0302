package platform

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/cirrus/pkg/adapters/fs"
	"github.com/aretw0/cirrus/pkg/adapters/memory"
	"github.com/aretw0/cirrus/pkg/adapters/rest"
	"github.com/aretw0/cirrus/pkg/core"
)

// OpenRemote builds the remote adapter selected by the URI scheme:
//
//	""                 no remote, offline only
//	memory://          in-process store (demos, tests)
//	http://, https://  REST collection URL
//
// It returns a nil Remote for the empty URI.
func OpenRemote(uri string, opts ...Option) (core.Remote, error) {
	return openRemote(uri, newOptions(opts))
}

func openRemote(uri string, o *options) (core.Remote, error) {
	if o.remote != nil {
		return o.remote, nil
	}

	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid remote %q: %w", uri, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory":
		o.logger.Debug("using in-memory remote")
		return memory.NewRemote(), nil
	case "http", "https":
		apiKey, _ := o.config["api_key"].(string)
		timeout, _ := o.config["timeout"].(time.Duration)
		return rest.NewClient(rest.ClientConfig{
			BaseURL: uri,
			APIKey:  apiKey,
			Timeout: timeout,
			Logger:  o.logger,
		})
	default:
		return nil, fmt.Errorf("unknown remote scheme: %q", u.Scheme)
	}
}

func openPersister(o *options) core.Persister {
	if o.persister != nil {
		return o.persister
	}
	path, _ := o.config["snapshot"].(string)
	if path == "" {
		return nil
	}
	return fs.NewSnapshot(path)
}
