package hooks

import "github.com/virtualspace/virtspace/pkg/hook"

// All builds every catalog in registration order. Callers filter by
// name before handing them to the registry.
func All(env *Env) []hook.Catalog {
	return []hook.Catalog{
		Filesystem(env),
		DeviceInfo(env),
		PackageManager(env),
		Process(env),
		Network(env),
		SysAPI(env),
	}
}

// Targets enumerates every target the catalogs intercept. The dispatch
// table must declare each of these before catalog registration.
func Targets(env *Env) []hook.Target {
	var out []hook.Target
	for _, c := range All(env) {
		for _, d := range c.Descriptors {
			out = append(out, hook.Target{Owner: d.Owner, Member: d.Member, Params: d.ParamTypes})
		}
	}
	return out
}
