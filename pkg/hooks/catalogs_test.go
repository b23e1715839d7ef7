package hooks

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/virtualspace/virtspace/pkg/api"
	"github.com/virtualspace/virtspace/pkg/hook"
	"github.com/virtualspace/virtspace/pkg/redirect"
)

// recorder is the declared original behavior under every target: it
// remembers the receiver and arguments it was invoked with.
type recorder struct {
	calls map[string][]any
}

func newHarness(t *testing.T, env *Env) (*hook.DispatchTable, *hook.Registry, *recorder) {
	t.Helper()
	rec := &recorder{calls: make(map[string][]any)}
	table := hook.NewDispatchTable()
	for _, target := range Targets(env) {
		key := target.Key()
		table.Declare(target, func(receiver any, args ...any) (any, error) {
			rec.calls[key] = append([]any{receiver}, args...)
			return fmt.Sprintf("orig:%s", key), nil
		})
	}
	return table, hook.NewRegistry(table, nil), rec
}

func registerAll(t *testing.T, reg *hook.Registry, env *Env) {
	t.Helper()
	for _, c := range All(env) {
		result := reg.RegisterCatalog(c)
		require.True(t, result.AllRegistered(), "catalog %s: %+v", c.Name, result.Failures)
	}
}

func fileTarget(member string, params ...string) hook.Target {
	return hook.Target{Owner: "java.io.File", Member: member, Params: params}
}

func TestFilesystemCatalogRedirectsPaths(t *testing.T) {
	rd := redirect.NewRedirector(nil)
	require.NoError(t, rd.AddMapping("/data/data/pkg.x", "/virtual/pkg.x"))
	env := &Env{Redirect: rd}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(Filesystem(env))
	require.True(t, result.AllRegistered(), "%+v", result.Failures)

	// Constructor: the path argument is rewritten before the original runs.
	ctor := fileTarget("<init>", "java.lang.String")
	_, err := table.Call(ctor, nil, "/data/data/pkg.x/files/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "/virtual/pkg.x/files/doc.txt"}, rec.calls[ctor.Key()])

	// Methods: the receiver path is rewritten.
	exists := fileTarget("exists")
	_, err = table.Call(exists, "/data/data/pkg.x/files/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, []any{"/virtual/pkg.x/files/doc.txt"}, rec.calls[exists.Key()])

	// Paths outside any mapping pass through untouched.
	_, err = table.Call(exists, "/sdcard/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []any{"/sdcard/photo.jpg"}, rec.calls[exists.Key()])
}

func TestFilesystemCatalogRedirectsBothRenamePaths(t *testing.T) {
	rd := redirect.NewRedirector(nil)
	require.NoError(t, rd.AddMapping("/data/data/pkg.x", "/virtual/pkg.x"))
	env := &Env{Redirect: rd}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(Filesystem(env))
	require.True(t, result.AllRegistered())

	rename := fileTarget("renameTo", "java.io.File")
	_, err := table.Call(rename, "/data/data/pkg.x/a", "/data/data/pkg.x/b")
	require.NoError(t, err)
	assert.Equal(t, []any{"/virtual/pkg.x/a", "/virtual/pkg.x/b"}, rec.calls[rename.Key()])
}

func TestDeviceInfoCatalogAnswersVirtualIdentity(t *testing.T) {
	env := &Env{Device: api.DeviceIdentity{
		Brand: "google", Model: "Pixel 7", Manufacturer: "Google",
		Serial: "AB12CD34EF56", AndroidID: "0123456789abcdef",
	}}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(DeviceInfo(env))
	require.True(t, result.AllRegistered())

	serial := hook.Target{Owner: "android.os.Build", Member: "getSerial"}
	got, err := table.Call(serial, nil)
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34EF56", got)
	assert.Empty(t, rec.calls[serial.Key()], "real serial must never be consulted")

	model := hook.Target{Owner: "android.os.Build", Member: "getModel"}
	got, err = table.Call(model, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pixel 7", got)
}

func TestDeviceInfoCatalogAndroidID(t *testing.T) {
	env := &Env{Device: api.DeviceIdentity{AndroidID: "0123456789abcdef"}}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(DeviceInfo(env))
	require.True(t, result.AllRegistered())

	getString := hook.Target{
		Owner:  "android.provider.Settings$Secure",
		Member: "getString",
		Params: []string{"android.content.ContentResolver", "java.lang.String"},
	}
	got, err := table.Call(getString, nil, "resolver", "android_id")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", got)
	assert.Empty(t, rec.calls[getString.Key()])

	// Other settings keys fall through to the original.
	_, err = table.Call(getString, nil, "resolver", "bluetooth_name")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "resolver", "bluetooth_name"}, rec.calls[getString.Key()])
}

type staticPackages map[string]api.PackageInfo

func (s staticPackages) Lookup(name string) (api.PackageInfo, bool) {
	info, ok := s[name]
	return info, ok
}

func (s staticPackages) Installed() []api.PackageInfo {
	out := make([]api.PackageInfo, 0, len(s))
	for _, info := range s {
		out = append(out, info)
	}
	return out
}

func TestPackageManagerCatalog(t *testing.T) {
	pkgs := staticPackages{
		"pkg.x": {Name: "pkg.x", VersionName: "1.2.3", VersionCode: 10203},
	}
	env := &Env{Packages: pkgs}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(PackageManager(env))
	require.True(t, result.AllRegistered())

	getInfo := hook.Target{
		Owner:  "android.app.ApplicationPackageManager",
		Member: "getPackageInfo",
		Params: []string{"java.lang.String", "int"},
	}
	got, err := table.Call(getInfo, nil, "pkg.x", 0)
	require.NoError(t, err)
	assert.Equal(t, pkgs["pkg.x"], got)
	assert.Empty(t, rec.calls[getInfo.Key()])

	// Unknown packages fall through.
	_, err = table.Call(getInfo, nil, "com.real.app", 0)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "com.real.app", 0}, rec.calls[getInfo.Key()])

	installed := hook.Target{
		Owner:  "android.app.ApplicationPackageManager",
		Member: "getInstalledPackages",
		Params: []string{"int"},
	}
	got, err = table.Call(installed, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []api.PackageInfo{pkgs["pkg.x"]}, got)

	checkPerm := hook.Target{
		Owner:  "android.app.ApplicationPackageManager",
		Member: "checkPermission",
		Params: []string{"java.lang.String", "java.lang.String"},
	}
	got, err = table.Call(checkPerm, nil, "android.permission.INTERNET", "pkg.x")
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, got)
}

func TestProcessCatalogVirtualIdentity(t *testing.T) {
	env := &Env{Proc: ProcessIdentity{Pid: 4242, UID: 10077}}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(Process(env))
	require.True(t, result.AllRegistered())

	myPid := hook.Target{Owner: "android.os.Process", Member: "myPid"}
	got, err := table.Call(myPid, nil)
	require.NoError(t, err)
	assert.Equal(t, 4242, got)

	myUID := hook.Target{Owner: "android.os.Process", Member: "myUid"}
	got, err = table.Call(myUID, nil)
	require.NoError(t, err)
	assert.Equal(t, 10077, got)

	// Killing the virtual pid is swallowed; other pids reach the original.
	kill := hook.Target{Owner: "android.os.Process", Member: "killProcess", Params: []string{"int"}}
	_, err = table.Call(kill, nil, 4242)
	require.NoError(t, err)
	assert.Empty(t, rec.calls[kill.Key()])

	_, err = table.Call(kill, nil, 99)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, 99}, rec.calls[kill.Key()])
}

func TestProcessCatalogFallsThroughWhenUnset(t *testing.T) {
	env := &Env{}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(Process(env))
	require.True(t, result.AllRegistered())

	myPid := hook.Target{Owner: "android.os.Process", Member: "myPid"}
	got, err := table.Call(myPid, nil)
	require.NoError(t, err)
	assert.Equal(t, "orig:"+myPid.Key(), got)
	assert.NotEmpty(t, rec.calls[myPid.Key()])
}

func TestNetworkCatalogPolicy(t *testing.T) {
	env := &Env{Network: &NetworkPolicy{
		Rewrites: map[string]string{"api.example.com": "127.0.0.1"},
		Blocked:  map[string]struct{}{"tracker.example.com": {}},
	}}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(Network(env))
	require.True(t, result.AllRegistered())

	getByName := hook.Target{Owner: "java.net.InetAddress", Member: "getByName", Params: []string{"java.lang.String"}}

	_, err := table.Call(getByName, nil, "tracker.example.com")
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, rec.calls[getByName.Key()])

	_, err = table.Call(getByName, nil, "api.example.com")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "127.0.0.1"}, rec.calls[getByName.Key()])

	_, err = table.Call(getByName, nil, "plain.example.com")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "plain.example.com"}, rec.calls[getByName.Key()])
}

func TestSysAPICatalogProperties(t *testing.T) {
	env := &Env{Device: api.DeviceIdentity{Model: "Pixel 7", Serial: "AB12CD34EF56"}}

	table, reg, rec := newHarness(t, env)
	result := reg.RegisterCatalog(SysAPI(env))
	require.True(t, result.AllRegistered())

	get := hook.Target{Owner: "android.os.SystemProperties", Member: "get", Params: []string{"java.lang.String"}}
	got, err := table.Call(get, nil, "ro.product.model")
	require.NoError(t, err)
	assert.Equal(t, "Pixel 7", got)

	_, err = table.Call(get, nil, "ro.build.date")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "ro.build.date"}, rec.calls[get.Key()])

	getDef := hook.Target{Owner: "android.os.SystemProperties", Member: "get", Params: []string{"java.lang.String", "java.lang.String"}}
	got, err = table.Call(getDef, nil, "ro.serialno", "unknown")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34EF56", got)
}

func TestAllCatalogsRegisterCleanly(t *testing.T) {
	env := &Env{Device: api.DeviceIdentity{Brand: "google"}}

	_, reg, _ := newHarness(t, env)
	registerAll(t, reg, env)

	total := 0
	for _, c := range All(env) {
		total += len(c.Descriptors)
	}
	assert.Len(t, reg.Records(), total)
	assert.Len(t, Targets(env), total)
}

func TestBadArgumentShape(t *testing.T) {
	env := &Env{}

	table, reg, _ := newHarness(t, env)
	result := reg.RegisterCatalog(Filesystem(env))
	require.True(t, result.AllRegistered())

	_, err := table.Call(fileTarget("exists"), 42)
	assert.ErrorIs(t, err, ErrBadArgument)
}
