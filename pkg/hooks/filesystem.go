package hooks

import "github.com/virtualspace/virtspace/pkg/hook"

// FilesystemCatalogName identifies the file path redirection group.
const FilesystemCatalogName = "filesystem"

// Filesystem builds the catalog that reroutes guest file operations
// into the owning application's isolation namespace. Every replacement
// rewrites the path through the redirector and delegates to the
// original with the virtual path; behavior is otherwise untouched.
func Filesystem(env *Env) hook.Catalog {
	redirectArg0 := func(orig hook.Callable, receiver any, args ...any) (any, error) {
		path, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		rest := append([]any{env.resolve(path)}, args[1:]...)
		return orig(receiver, rest...)
	}

	// Methods on an already-constructed file: the receiver carries the
	// path, arguments pass through untouched.
	redirectReceiver := func(orig hook.Callable, receiver any, args ...any) (any, error) {
		path, err := receiverString(receiver)
		if err != nil {
			return nil, err
		}
		return orig(env.resolve(path), args...)
	}

	// renameTo touches two paths; both sides must land in the namespace
	// or a rename could smuggle data across the boundary.
	redirectBoth := func(orig hook.Callable, receiver any, args ...any) (any, error) {
		src, err := receiverString(receiver)
		if err != nil {
			return nil, err
		}
		dst, err := argString(args, 0)
		if err != nil {
			return nil, err
		}
		return orig(env.resolve(src), env.resolve(dst))
	}

	pathMethod := func(member string) hook.Descriptor {
		return hook.Descriptor{
			Owner:       "java.io.File",
			Member:      member,
			Replacement: redirectReceiver,
			Priority:    100,
			Enabled:     true,
		}
	}

	return hook.Catalog{
		Name: FilesystemCatalogName,
		Descriptors: []hook.Descriptor{
			{
				Owner:       "java.io.File",
				Member:      "<init>",
				ParamTypes:  []string{"java.lang.String"},
				Replacement: redirectArg0,
				Priority:    100,
				Enabled:     true,
			},
			pathMethod("exists"),
			pathMethod("getAbsolutePath"),
			pathMethod("getCanonicalPath"),
			pathMethod("list"),
			pathMethod("mkdir"),
			pathMethod("mkdirs"),
			pathMethod("delete"),
			pathMethod("createNewFile"),
			{
				Owner:       "java.io.File",
				Member:      "renameTo",
				ParamTypes:  []string{"java.io.File"},
				Replacement: redirectBoth,
				Priority:    100,
				Enabled:     true,
			},
		},
	}
}
