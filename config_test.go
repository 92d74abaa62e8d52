// Copyright (C) 2022  Shanhu Tech Inc.
//
// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.
//
// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU Affero General Public License
// for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package bpfbuild

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"shanhu.io/misc/errcode"
)

func TestResolveConfig(t *testing.T) {
	sdk := t.TempDir()
	want, err := filepath.EvalSymlinks(sdk)
	if err != nil {
		t.Fatal(err)
	}

	opts := &Options{
		SDK:               sdk,
		Dump:              true,
		Features:          []string{"a", "b", "a"},
		ManifestPath:      "sub/Cargo.toml",
		NoDefaultFeatures: true,
	}
	config, err := ResolveConfig(opts)
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}

	if config.SDK != want {
		t.Errorf("SDK = %q, want %q", config.SDK, want)
	}
	if !config.Dump || !config.NoDefaultFeatures {
		t.Errorf("flags not carried: %+v", config)
	}
	if got := config.Features; !reflect.DeepEqual(got, opts.Features) {
		t.Errorf("Features = %q, want %q", got, opts.Features)
	}
	if config.ManifestPath != "sub/Cargo.toml" {
		t.Errorf("ManifestPath = %q", config.ManifestPath)
	}

	opts.Features[0] = "changed"
	if config.Features[0] != "a" {
		t.Error("config shares the feature list with the options")
	}
}

func TestResolveConfigSymlink(t *testing.T) {
	dir := t.TempDir()
	sdk := filepath.Join(dir, "sdk")
	if err := os.Mkdir(sdk, 0700); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(sdk, link); err != nil {
		t.Skip("symlink not supported:", err)
	}

	config, err := ResolveConfig(&Options{SDK: link})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	want, err := filepath.EvalSymlinks(sdk)
	if err != nil {
		t.Fatal(err)
	}
	if config.SDK != want {
		t.Errorf("SDK = %q, want %q", config.SDK, want)
	}
}

func TestResolveConfigBadSDK(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing")
	if _, err := ResolveConfig(&Options{SDK: missing}); err == nil {
		t.Error("missing SDK: got nil error")
	} else if !errcode.IsNotFound(err) {
		t.Errorf("missing SDK: got %v, want a not found error", err)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveConfig(&Options{SDK: file}); err == nil {
		t.Error("SDK is a file: got nil error")
	}
}

func TestDefaultSDK(t *testing.T) {
	sdk, err := DefaultSDK()
	if err != nil {
		t.Fatalf("DefaultSDK: %v", err)
	}
	exe, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(exe), "sdk", "bpf")
	if sdk != want {
		t.Errorf("DefaultSDK() = %q, want %q", sdk, want)
	}
}

func TestOptionsMerge(t *testing.T) {
	tests := []struct {
		name string
		base *Options
		over *Options
		want *Options
	}{{
		name: "nil override",
		base: &Options{SDK: "/sdk", Features: []string{"a"}},
		want: &Options{SDK: "/sdk", Features: []string{"a"}},
	}, {
		name: "strings replaced",
		base: &Options{SDK: "/sdk", ManifestPath: "a.toml"},
		over: &Options{SDK: "/other", Docker: "img"},
		want: &Options{
			SDK:          "/other",
			ManifestPath: "a.toml",
			Docker:       "img",
		},
	}, {
		name: "features replaced",
		base: &Options{Features: []string{"a", "b"}},
		over: &Options{Features: []string{"c"}},
		want: &Options{Features: []string{"c"}},
	}, {
		name: "empty features kept",
		base: &Options{Features: []string{"a"}},
		over: &Options{},
		want: &Options{Features: []string{"a"}},
	}, {
		name: "bools or-ed",
		base: &Options{Dump: true},
		over: &Options{NoDefaultFeatures: true},
		want: &Options{Dump: true, NoDefaultFeatures: true},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Merge(tt.over)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadOptionsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "build.jsonx")
	content := `{
		"SDK": "/opt/sdk",
		"Dump": true,
		"Features": ["x", "y"],
	}`
	if err := os.WriteFile(f, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	opts, err := ReadOptionsFile(f)
	if err != nil {
		t.Fatalf("ReadOptionsFile: %v", err)
	}
	want := &Options{
		SDK:      "/opt/sdk",
		Dump:     true,
		Features: []string{"x", "y"},
	}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("got %+v, want %+v", opts, want)
	}
}

func TestReadOptionsFileBad(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.jsonx")
	content := `{
		"SDK": "/opt/sdk"
		"Dump": true,
	}`
	if err := os.WriteFile(bad, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadOptionsFile(bad); err == nil {
		t.Error("malformed options file: got nil error")
	}

	missing := filepath.Join(dir, "missing.jsonx")
	if _, err := ReadOptionsFile(missing); err == nil {
		t.Error("missing options file: got nil error")
	}
}
