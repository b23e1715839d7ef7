package core

import (
	"errors"
	"io/fs"
	"os"

	"github.com/virtualspace/virtspace/internal/errx"
	"github.com/virtualspace/virtspace/pkg/hook"
	"github.com/virtualspace/virtspace/pkg/hooks"
)

// declareGuestSurface populates the dispatch table with the default
// host-side behavior of every interceptable target. File operations act
// on the host filesystem (which is where the virtual roots live after
// redirection); identity reads answer with host values; targets with no
// sensible host behavior fail with ErrHostUnsupported so a missing hook
// is loud instead of silently wrong.
func declareGuestSurface(table *hook.DispatchTable) {
	unsupported := func(key string) hook.Callable {
		return func(any, ...any) (any, error) {
			return nil, errx.With(ErrHostUnsupported, ": %s", key)
		}
	}

	pathOf := func(receiver any) (string, error) {
		s, ok := receiver.(string)
		if !ok {
			return "", errx.With(hooks.ErrBadArgument, ": receiver is %T, want string", receiver)
		}
		return s, nil
	}

	fileOp := func(fn func(path string) (any, error)) hook.Callable {
		return func(receiver any, _ ...any) (any, error) {
			path, err := pathOf(receiver)
			if err != nil {
				return nil, err
			}
			return fn(path)
		}
	}

	declare := func(owner, member string, params []string, impl hook.Callable) {
		table.Declare(hook.Target{Owner: owner, Member: member, Params: params}, impl)
	}

	declare("java.io.File", "<init>", []string{"java.lang.String"},
		func(_ any, args ...any) (any, error) {
			if len(args) != 1 {
				return nil, errx.With(hooks.ErrBadArgument, ": File constructor wants 1 argument")
			}
			return args[0], nil
		})
	declare("java.io.File", "exists", nil, fileOp(func(path string) (any, error) {
		_, err := os.Stat(path)
		return err == nil, nil
	}))
	declare("java.io.File", "getAbsolutePath", nil, fileOp(func(path string) (any, error) {
		return path, nil
	}))
	declare("java.io.File", "getCanonicalPath", nil, fileOp(func(path string) (any, error) {
		return path, nil
	}))
	declare("java.io.File", "list", nil, fileOp(func(path string) (any, error) {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return names, nil
	}))
	declare("java.io.File", "mkdir", nil, fileOp(func(path string) (any, error) {
		return os.Mkdir(path, 0755) == nil, nil
	}))
	declare("java.io.File", "mkdirs", nil, fileOp(func(path string) (any, error) {
		return os.MkdirAll(path, 0755) == nil, nil
	}))
	declare("java.io.File", "delete", nil, fileOp(func(path string) (any, error) {
		return os.Remove(path) == nil, nil
	}))
	declare("java.io.File", "createNewFile", nil, fileOp(func(path string) (any, error) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return false, nil
			}
			return nil, err
		}
		return true, f.Close()
	}))
	declare("java.io.File", "renameTo", []string{"java.io.File"},
		func(receiver any, args ...any) (any, error) {
			src, err := pathOf(receiver)
			if err != nil {
				return nil, err
			}
			if len(args) != 1 {
				return nil, errx.With(hooks.ErrBadArgument, ": renameTo wants 1 argument")
			}
			dst, ok := args[0].(string)
			if !ok {
				return nil, errx.With(hooks.ErrBadArgument, ": renameTo argument is %T, want string", args[0])
			}
			return os.Rename(src, dst) == nil, nil
		})

	for _, member := range []string{"getBrand", "getModel", "getManufacturer", "getSerial", "getFingerprint"} {
		declare("android.os.Build", member, nil, unsupported("android.os.Build."+member))
	}
	declare("android.provider.Settings$Secure", "getString",
		[]string{"android.content.ContentResolver", "java.lang.String"},
		unsupported("android.provider.Settings$Secure.getString"))

	declare("android.app.ApplicationPackageManager", "getPackageInfo",
		[]string{"java.lang.String", "int"},
		unsupported("android.app.ApplicationPackageManager.getPackageInfo"))
	declare("android.app.ApplicationPackageManager", "getApplicationInfo",
		[]string{"java.lang.String", "int"},
		unsupported("android.app.ApplicationPackageManager.getApplicationInfo"))
	declare("android.app.ApplicationPackageManager", "getInstalledPackages",
		[]string{"int"},
		unsupported("android.app.ApplicationPackageManager.getInstalledPackages"))
	declare("android.app.ApplicationPackageManager", "checkPermission",
		[]string{"java.lang.String", "java.lang.String"},
		unsupported("android.app.ApplicationPackageManager.checkPermission"))

	declare("android.os.Process", "myPid", nil, func(any, ...any) (any, error) {
		return os.Getpid(), nil
	})
	declare("android.os.Process", "myUid", nil, func(any, ...any) (any, error) {
		return os.Getuid(), nil
	})
	declare("android.os.Process", "killProcess", []string{"int"},
		unsupported("android.os.Process.killProcess"))

	// Network targets resolve to the (possibly rewritten) host string;
	// actual connectivity belongs to the embedding runtime.
	hostEcho := func(_ any, args ...any) (any, error) {
		if len(args) == 0 {
			return nil, errx.With(hooks.ErrBadArgument, ": missing host argument")
		}
		return args[0], nil
	}
	declare("java.net.Socket", "<init>", []string{"java.lang.String", "int"}, hostEcho)
	declare("java.net.InetAddress", "getByName", []string{"java.lang.String"}, hostEcho)
	declare("java.net.InetAddress", "getAllByName", []string{"java.lang.String"}, hostEcho)

	declare("android.os.SystemProperties", "get", []string{"java.lang.String"},
		func(any, ...any) (any, error) { return "", nil })
	declare("android.os.SystemProperties", "get", []string{"java.lang.String", "java.lang.String"},
		func(_ any, args ...any) (any, error) {
			if len(args) < 2 {
				return nil, errx.With(hooks.ErrBadArgument, ": missing default value")
			}
			return args[1], nil
		})
}
