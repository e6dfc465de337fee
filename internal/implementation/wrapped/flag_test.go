package wrapped

import (
	"errors"
	"math"
	"testing"

	"github.com/Andre601/WorldGuardWrapper/internal/flag"
	"github.com/Andre601/WorldGuardWrapper/internal/host"
	"github.com/Andre601/WorldGuardWrapper/internal/implementation"
	"github.com/Andre601/WorldGuardWrapper/internal/protection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_RoundTripEveryType(t *testing.T) {
	server := host.NewServer("world")
	world, _ := server.World("world")

	tests := []struct {
		name   string
		native protection.Flag
		values []any
	}{
		{"state", protection.PvP, []any{flag.Allow, flag.Deny}},
		{"boolean", protection.Buyable, []any{true, false}},
		{"string", protection.Greeting, []any{"", "Привет, %name%!"}},
		{"integer", protection.HealAmount, []any{0, -3, math.MaxInt32}},
		{"double", protection.Price, []any{0.0, -1.5, 1e9}},
		{"location", protection.Teleport, []any{
			host.Location{World: world, X: 1.5, Y: 64, Z: -2.25, Yaw: 90, Pitch: -15},
		}},
		{"set", protection.BlockedCmds, []any{[]string{}, []string{"/home", "/tp"}}},
		{"group", protection.Build.RegionGroupFlag(), []any{"members", "nonmembers", "none"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Wrap(tt.native, server)
			for _, v := range tt.values {
				native, err := f.ToNativeValue(v)
				require.NoError(t, err)
				assert.True(t, tt.native.Accepts(native))

				back, ok := f.FromNativeValue(native)
				require.True(t, ok)
				assert.Equal(t, v, back)
			}
		})
	}
}

func TestFlag_ValueTypes(t *testing.T) {
	assert.Equal(t, flag.StateType, Wrap(protection.PvP, nil).ValueType())
	assert.Equal(t, flag.BoolType, Wrap(protection.Buyable, nil).ValueType())
	assert.Equal(t, flag.IntType, Wrap(protection.HealDelay, nil).ValueType())
	assert.Equal(t, flag.DoubleType, Wrap(protection.MaxHeal, nil).ValueType())
	assert.Equal(t, flag.LocationType, Wrap(protection.Spawn, nil).ValueType())
	assert.Equal(t, flag.SetType, Wrap(protection.AllowedCmds, nil).ValueType())
	assert.Equal(t, flag.StringType, Wrap(protection.Use.RegionGroupFlag(), nil).ValueType())
}

func TestFlag_SetNormalizesOrderAndDuplicates(t *testing.T) {
	f := Wrap(protection.BlockedCmds, nil)
	native, err := f.ToNativeValue([]string{"/tp", "/home", "/tp"})
	require.NoError(t, err)

	back, ok := f.FromNativeValue(native)
	require.True(t, ok)
	assert.Equal(t, []string{"/home", "/tp"}, back)
}

func TestFlag_FromNativeRejectsUnrepresentable(t *testing.T) {
	server := host.NewServer("world")

	assert.False(t, valueOK(Wrap(protection.PvP, server).FromNativeValue("deny")))
	assert.False(t, valueOK(Wrap(protection.PvP, server).FromNativeValue(nil)))
	assert.False(t, valueOK(Wrap(protection.HealAmount, server).FromNativeValue(2.5)))
	assert.False(t, valueOK(Wrap(protection.Price, server).FromNativeValue(math.NaN())))
	assert.False(t, valueOK(Wrap(protection.Price, server).FromNativeValue(math.Inf(1))))
	assert.False(t, valueOK(Wrap(protection.BlockedCmds, server).FromNativeValue([]string{"/a"})))
	assert.False(t, valueOK(Wrap(protection.Teleport, server).FromNativeValue(
		protection.Location{World: "unknown_world", X: 1})))
}

func valueOK(_ any, ok bool) bool { return ok }

func TestFlag_ToNativeRejectsWrongType(t *testing.T) {
	cases := []struct {
		native protection.Flag
		value  any
	}{
		{protection.PvP, true},
		{protection.PvP, flag.State(0)},
		{protection.Buyable, "true"},
		{protection.HealAmount, int64(1)},
		{protection.Price, math.NaN()},
		{protection.Teleport, host.Location{}},
		{protection.BlockedCmds, "a"},
		{protection.Build.RegionGroupFlag(), "everyone"},
	}

	for _, c := range cases {
		_, err := Wrap(c.native, nil).ToNativeValue(c.value)
		assert.True(t, errors.Is(err, flag.ErrValueType), "%s <- %#v", c.native.Name(), c.value)
	}
}

func TestFlag_DefaultValue(t *testing.T) {
	def, ok := Wrap(protection.DenyMessage, nil).DefaultValue()
	assert.True(t, ok)
	assert.Equal(t, "Hey! Sorry, but you can't %what% here.", def)

	def, ok = Wrap(protection.Build.RegionGroupFlag(), nil).DefaultValue()
	assert.True(t, ok)
	assert.Equal(t, "nonmembers", def)

	_, ok = Wrap(protection.Greeting, nil).DefaultValue()
	assert.False(t, ok)
}

func TestWrapAs(t *testing.T) {
	_, ok := WrapAs(protection.PvP, flag.StateType, nil)
	assert.True(t, ok)

	_, ok = WrapAs(protection.PvP, flag.BoolType, nil)
	assert.False(t, ok)

	_, ok = WrapAs(nil, flag.BoolType, nil)
	assert.False(t, ok)
}

func TestNewNativeFlag(t *testing.T) {
	f, err := NewNativeFlag("allow-shop", flag.StateType, flag.Allow)
	require.NoError(t, err)
	assert.Equal(t, protection.Allow, f.Default())

	f, err = NewNativeFlag("shop-tax", flag.DoubleType, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 0.25, f.Default())

	f, err = NewNativeFlag("shop-name", flag.StringType, nil)
	require.NoError(t, err)
	assert.Nil(t, f.Default())

	_, err = NewNativeFlag("shop-size", flag.IntType, "big")
	assert.True(t, errors.Is(err, flag.ErrValueType))

	_, err = NewNativeFlag("shop-home", flag.LocationType, host.Location{})
	assert.True(t, errors.Is(err, implementation.ErrUnsupported))

	_, err = NewNativeFlag("weird", flag.StateType, nil)
	assert.NoError(t, err)
}
