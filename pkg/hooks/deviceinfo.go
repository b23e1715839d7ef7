package hooks

import (
	"github.com/virtualspace/virtspace/pkg/hook"
)

// DeviceInfoCatalogName identifies the virtual device identity group.
const DeviceInfoCatalogName = "deviceinfo"

// DeviceInfo builds the catalog that answers device identity reads with
// the configured virtual identity. The original is never consulted: the
// whole point is that the real serial and android id stay invisible.
func DeviceInfo(env *Env) hook.Catalog {
	constant := func(value string) hook.Replacement {
		return func(hook.Callable, any, ...any) (any, error) {
			return value, nil
		}
	}

	buildGetter := func(member, value string) hook.Descriptor {
		return hook.Descriptor{
			Owner:       "android.os.Build",
			Member:      member,
			Replacement: constant(value),
			Priority:    100,
			Enabled:     true,
		}
	}

	d := env.Device
	return hook.Catalog{
		Name: DeviceInfoCatalogName,
		Descriptors: []hook.Descriptor{
			buildGetter("getBrand", d.Brand),
			buildGetter("getModel", d.Model),
			buildGetter("getManufacturer", d.Manufacturer),
			buildGetter("getSerial", d.Serial),
			buildGetter("getFingerprint", d.Brand+"/"+d.Model+"/"+d.Serial),
			{
				Owner:      "android.provider.Settings$Secure",
				Member:     "getString",
				ParamTypes: []string{"android.content.ContentResolver", "java.lang.String"},
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					key, err := argString(args, 1)
					if err != nil {
						return nil, err
					}
					if key == "android_id" {
						return d.AndroidID, nil
					}
					return orig(receiver, args...)
				},
				Priority: 100,
				Enabled:  true,
			},
		},
	}
}
