package hal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmehall/go-soapysdr/hal"
	"github.com/kevinmehall/go-soapysdr/hal/haltest"
)

func newDevice(serial string) *haltest.Device {
	d := haltest.NewDevice()
	d.ID.Set("serial", serial)
	return d
}

func TestRegister(t *testing.T) {
	defer hal.UnregisterAll()

	hal.Register("beta", haltest.NewDriver())
	hal.Register("alpha", haltest.NewDriver())
	assert.Equal(t, []string{"alpha", "beta"}, hal.Drivers())

	assert.Panics(t, func() { hal.Register("alpha", haltest.NewDriver()) }, "duplicate name")
	assert.Panics(t, func() { hal.Register("gamma", nil) }, "nil driver")
}

func TestEnumerate(t *testing.T) {
	defer hal.UnregisterAll()

	hal.Register("one", haltest.NewDriver(newDevice("A")))
	hal.Register("two", haltest.NewDriver(newDevice("B"), newDevice("C")))

	found, err := hal.Enumerate(hal.Kwargs{})
	require.NoError(t, err)
	require.Len(t, found, 3)
	for _, kw := range found {
		driver, ok := kw.Get("driver")
		require.True(t, ok, "results are stamped with the driver name")
		assert.Contains(t, []string{"one", "two"}, driver)
	}
}

func TestEnumerateDriverFilter(t *testing.T) {
	defer hal.UnregisterAll()

	hal.Register("one", haltest.NewDriver(newDevice("A")))
	hal.Register("two", haltest.NewDriver(newDevice("B")))

	var filter hal.Kwargs
	filter.Set("driver", "two")
	found, err := hal.Enumerate(filter)
	require.NoError(t, err)
	require.Len(t, found, 1)
	serial, _ := found[0].Get("serial")
	assert.Equal(t, "B", serial)
}

func TestEnumerateNoDrivers(t *testing.T) {
	defer hal.UnregisterAll()

	found, err := hal.Enumerate(hal.Kwargs{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMakeByDriverName(t *testing.T) {
	defer hal.UnregisterAll()

	hal.Register("one", haltest.NewDriver(newDevice("A")))

	var args hal.Kwargs
	args.Set("driver", "one")
	dev, err := hal.Make(args)
	require.NoError(t, err)
	assert.Equal(t, "test", dev.DriverKey())
	dev.Unmake()

	args.Set("driver", "unregistered")
	_, err = hal.Make(args)
	require.Error(t, err)
}

func TestMakeFirstMatch(t *testing.T) {
	defer hal.UnregisterAll()

	hal.Register("empty", haltest.NewDriver())
	hal.Register("full", haltest.NewDriver(newDevice("A")))

	dev, err := hal.Make(hal.Kwargs{})
	require.NoError(t, err, "drivers that cannot serve the args are skipped")
	require.NotNil(t, dev)
	dev.Unmake()

	hal.UnregisterAll()
	_, err = hal.Make(hal.Kwargs{})
	assert.ErrorIs(t, err, hal.ErrNoDevice)
}

func TestKwargs(t *testing.T) {
	var kw hal.Kwargs
	kw.Set("a", "1")
	kw.Set("b", "2")
	kw.Set("a", "3")

	v, ok := kw.Get("a")
	require.True(t, ok)
	assert.Equal(t, "3", v, "Set overwrites the first match")
	_, ok = kw.Get("missing")
	assert.False(t, ok)

	c := kw.Clone()
	c.Set("a", "9")
	v, _ = kw.Get("a")
	assert.Equal(t, "3", v, "clones do not share storage")
}
