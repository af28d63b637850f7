// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package topology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		needsDark  bool
		needsLight bool
		darkApps   []string
		lightApps  []string
	}{
		{
			name: "no arguments runs unified",
			args: nil,
		},
		{
			name:      "no delimiter keeps every app for dark",
			args:      []string{"a1", "a2"},
			needsDark: true,
			darkApps:  []string{"a1", "a2"},
		},
		{
			name:       "single delimiter splits dark and light",
			args:       []string{"a1", "a2", ".x", "b1", "b2"},
			needsDark:  true,
			needsLight: true,
			darkApps:   []string{"a1", "a2"},
			lightApps:  []string{"b1", "b2"},
		},
		{
			name:       "bare dot is a delimiter",
			args:       []string{"org.gnome.Nautilus", ".", "firefox"},
			needsDark:  true,
			needsLight: true,
			darkApps:   []string{"org.gnome.Nautilus"},
			lightApps:  []string{"firefox"},
		},
		{
			name:       "leading delimiter leaves dark empty",
			args:       []string{".", "b1"},
			needsDark:  true,
			needsLight: true,
			darkApps:   []string{},
			lightApps:  []string{"b1"},
		},
		{
			name:       "trailing delimiter leaves light empty",
			args:       []string{"a1", "."},
			needsDark:  true,
			needsLight: true,
			darkApps:   []string{"a1"},
			lightApps:  []string{},
		},
		{
			name:       "only a delimiter",
			args:       []string{"."},
			needsDark:  true,
			needsLight: true,
			darkApps:   []string{},
			lightApps:  []string{},
		},
		{
			name:       "extra delimiters are dropped after the split",
			args:       []string{"a1", ".", "b1", ".y", "b2", "..", "b3"},
			needsDark:  true,
			needsLight: true,
			darkApps:   []string{"a1"},
			lightApps:  []string{"b1", "b2", "b3"},
		},
		{
			name:      "flag-like arguments are app ids",
			args:      []string{"--help", "-v"},
			needsDark: true,
			darkApps:  []string{"--help", "-v"},
		},
		{
			name:      "empty string is an app id",
			args:      []string{""},
			needsDark: true,
			darkApps:  []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.args)
			assert.Equal(t, tt.needsDark, got.NeedsDark, "NeedsDark")
			assert.Equal(t, tt.needsLight, got.NeedsLight, "NeedsLight")
			assert.Equal(t, tt.darkApps, got.DarkApps, "DarkApps")
			assert.Equal(t, tt.lightApps, got.LightApps, "LightApps")
		})
	}
}

func TestPartition_Conservation(t *testing.T) {
	inputs := [][]string{
		{},
		{"a"},
		{".", "."},
		{"a", "b", "c"},
		{"a", ".1", "b", ".2", "c", ".3"},
		{".lead", "x", "y"},
		{"x", "y", ".trail"},
		{"", ".", ""},
	}

	for _, args := range inputs {
		t.Run(strings.Join(args, ","), func(t *testing.T) {
			got := Partition(args)

			want := []string{}
			for _, a := range args {
				if !IsDelimiter(a) {
					want = append(want, a)
				}
			}

			joined := append(append([]string{}, got.DarkApps...), got.LightApps...)
			assert.Equal(t, want, joined)
		})
	}
}

func TestPartition_IsPure(t *testing.T) {
	args := []string{"a1", ".x", "b1"}
	snapshot := append([]string(nil), args...)

	first := Partition(args)
	second := Partition(args)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, args, "Partition must not modify its input")

	first.DarkApps[0] = "mutated"
	assert.Equal(t, "a1", args[0], "result must not alias the input")
}

func TestPartitionResult_Roles(t *testing.T) {
	assert.Empty(t, Partition(nil).Roles())
	assert.False(t, Partition(nil).Split())

	assert.Equal(t, []Role{RoleDark}, Partition([]string{"a"}).Roles())
	assert.Equal(t, []Role{RoleDark, RoleLight}, Partition([]string{"a", ".", "b"}).Roles())
	assert.True(t, Partition([]string{"a"}).Split())
}

func TestPartitionResult_Apps(t *testing.T) {
	result := Partition([]string{"a1", ".", "b1"})

	dark := result.Apps(RoleDark)
	require.Equal(t, []string{"a1"}, dark)
	dark[0] = "changed"
	assert.Equal(t, []string{"a1"}, result.DarkApps, "Apps must return a copy")

	assert.Equal(t, []string{"b1"}, result.Apps(RoleLight))
	assert.Equal(t, []string{}, result.Apps(RoleUnified))
}

func TestIsDelimiter(t *testing.T) {
	assert.True(t, IsDelimiter("."))
	assert.True(t, IsDelimiter(".hidden"))
	assert.False(t, IsDelimiter(""))
	assert.False(t, IsDelimiter("a.b"))
}
