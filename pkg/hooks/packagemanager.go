package hooks

import (
	"github.com/virtualspace/virtspace/pkg/hook"
)

// PackageManagerCatalogName identifies the virtual package metadata group.
const PackageManagerCatalogName = "packagemanager"

// Permission check results, mirroring PackageManager.PERMISSION_*.
const (
	PermissionGranted = 0
	PermissionDenied  = -1
)

// PackageManager builds the catalog answering package metadata lookups
// for isolated applications. Packages known to the virtual source are
// answered locally; everything else falls through to the original.
func PackageManager(env *Env) hook.Catalog {
	lookupPackage := func(orig hook.Callable, receiver any, args ...any) (any, error) {
		name, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		if env.Packages != nil {
			if info, ok := env.Packages.Lookup(name); ok {
				env.logger().Debug("virtual package lookup", "package", name)
				return info, nil
			}
		}
		return orig(receiver, args...)
	}

	return hook.Catalog{
		Name: PackageManagerCatalogName,
		Descriptors: []hook.Descriptor{
			{
				Owner:       "android.app.ApplicationPackageManager",
				Member:      "getPackageInfo",
				ParamTypes:  []string{"java.lang.String", "int"},
				Replacement: lookupPackage,
				Priority:    100,
				Enabled:     true,
			},
			{
				Owner:       "android.app.ApplicationPackageManager",
				Member:      "getApplicationInfo",
				ParamTypes:  []string{"java.lang.String", "int"},
				Replacement: lookupPackage,
				Priority:    100,
				Enabled:     true,
			},
			{
				Owner:      "android.app.ApplicationPackageManager",
				Member:     "getInstalledPackages",
				ParamTypes: []string{"int"},
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					if env.Packages == nil {
						return orig(receiver, args...)
					}
					// Isolated applications only ever see the virtual set.
					return env.Packages.Installed(), nil
				},
				Priority: 100,
				Enabled:  true,
			},
			{
				Owner:      "android.app.ApplicationPackageManager",
				Member:     "checkPermission",
				ParamTypes: []string{"java.lang.String", "java.lang.String"},
				Replacement: func(orig hook.Callable, receiver any, args ...any) (any, error) {
					pkg, err := argString(args, 1)
					if err != nil {
						return nil, err
					}
					if env.Packages != nil {
						if _, ok := env.Packages.Lookup(pkg); ok {
							// Virtual packages run with every permission
							// they declared; enforcement happens at the
							// namespace boundary, not here.
							return PermissionGranted, nil
						}
					}
					return orig(receiver, args...)
				},
				Priority: 100,
				Enabled:  true,
			},
		},
	}
}
