package hooks

import (
	"github.com/virtualspace/virtspace/pkg/hook"
)

// SysAPICatalogName identifies the system property group.
const SysAPICatalogName = "sysapi"

// SysAPI builds the catalog answering system property reads that would
// leak the real device identity. Properties outside the virtual set
// fall through to the original.
func SysAPI(env *Env) hook.Catalog {
	props := map[string]string{
		"ro.product.brand":        env.Device.Brand,
		"ro.product.model":        env.Device.Model,
		"ro.product.manufacturer": env.Device.Manufacturer,
		"ro.serialno":             env.Device.Serial,
	}

	getProp := func(orig hook.Callable, receiver any, args ...any) (any, error) {
		key, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if v, ok := props[key]; ok {
			return v, nil
		}
		return orig(receiver, args...)
	}

	return hook.Catalog{
		Name: SysAPICatalogName,
		Descriptors: []hook.Descriptor{
			{
				Owner:       "android.os.SystemProperties",
				Member:      "get",
				ParamTypes:  []string{"java.lang.String"},
				Replacement: getProp,
				Priority:    100,
				Enabled:     true,
			},
			{
				Owner:      "android.os.SystemProperties",
				Member:     "get",
				ParamTypes: []string{"java.lang.String", "java.lang.String"},
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					key, err := argString(args, 0)
					if err != nil {
						return nil, err
					}
					if v, ok := props[key]; ok {
						return v, nil
					}
					return orig(receiver, args...)
				},
				Priority: 100,
				Enabled:  true,
			},
		},
	}
}
