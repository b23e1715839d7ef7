package hooks

import (
	"github.com/virtualspace/virtspace/pkg/hook"
)

// ProcessCatalogName identifies the virtual process identity group.
const ProcessCatalogName = "process"

// Process builds the catalog presenting the virtual process identity.
// Unset identity fields (zero) fall through to the original answer.
func Process(env *Env) hook.Catalog {
	return hook.Catalog{
		Name: ProcessCatalogName,
		Descriptors: []hook.Descriptor{
			{
				Owner:  "android.os.Process",
				Member: "myPid",
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					if env.Proc.Pid > 0 {
						return env.Proc.Pid, nil
					}
					return orig(receiver, args...)
				},
				Priority: 100,
				Enabled:  true,
			},
			{
				Owner:  "android.os.Process",
				Member: "myUid",
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					if env.Proc.UID > 0 {
						return env.Proc.UID, nil
					}
					return orig(receiver, args...)
				},
				Priority: 100,
				Enabled:  true,
			},
			{
				Owner:      "android.os.Process",
				Member:     "killProcess",
				ParamTypes: []string{"int"},
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					pid, err := argInt(args, 0)
					if err != nil {
						return nil, err
					}
					// A guest killing its own virtual pid must not take
					// down the host process it actually runs in.
					if env.Proc.Pid > 0 && pid == env.Proc.Pid {
						env.logger().Info("suppressed kill of virtual process", "pid", pid)
						return nil, nil
					}
					return orig(receiver, args...)
				},
				Priority: 100,
				Enabled:  true,
			},
		},
	}
}
