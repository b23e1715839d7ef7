package hooks

import (
	"github.com/virtualspace/virtspace/internal/errx"
	"github.com/virtualspace/virtspace/pkg/hook"
)

// NetworkCatalogName identifies the network policy group.
const NetworkCatalogName = "network"

// Network builds the catalog gating guest network calls: blocked hosts
// fail with ErrAccessDenied, rewritten hosts are swapped before the
// original runs.
func Network(env *Env) hook.Catalog {
	gateHostArg0 := func(orig hook.Callable, receiver any, args ...any) (any, error) {
		host, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if !env.Network.Allowed(host) {
			env.logger().Warn("network access denied", "host", host)
			return nil, errx.With(ErrAccessDenied, ": %s", host)
		}
		rest := append([]any{env.Network.RewriteHost(host)}, args[1:]...)
		return orig(receiver, rest...)
	}

	return hook.Catalog{
		Name: NetworkCatalogName,
		Descriptors: []hook.Descriptor{
			{
				Owner:       "java.net.Socket",
				Member:      "<init>",
				ParamTypes:  []string{"java.lang.String", "int"},
				Replacement: gateHostArg0,
				Priority:    100,
				Enabled:     true,
			},
			{
				Owner:       "java.net.InetAddress",
				Member:      "getByName",
				ParamTypes:  []string{"java.lang.String"},
				Replacement: gateHostArg0,
				Priority:    100,
				Enabled:     true,
			},
			{
				Owner:       "java.net.InetAddress",
				Member:      "getAllByName",
				ParamTypes:  []string{"java.lang.String"},
				Replacement: gateHostArg0,
				Priority:    100,
				Enabled:     true,
			},
		},
	}
}
