package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/petpix/internal/core/notice"
)

func TestOutcomes_TakeReturnsNewNoticesOnce(t *testing.T) {
	bus := notice.NewBus()
	o := watch(bus)
	defer o.Close()

	bus.Successf("one")
	bus.Errorf("two")

	got := o.Take()
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "two", got[1].Text)
	assert.Empty(t, o.Take())

	bus.Warnf("three")
	got = o.Take()
	require.Len(t, got, 1)
	assert.Equal(t, "three", got[0].Text)
}

func TestOutcomes_CountsErrors(t *testing.T) {
	bus := notice.NewBus()
	o := watch(bus)

	id := bus.Errorf("boom")
	bus.Dismiss(id)
	bus.Successf("fine")
	assert.Equal(t, 1, o.Errors())

	o.Close()
	bus.Errorf("after close")
	assert.Equal(t, 1, o.Errors())
}

func TestFirstError(t *testing.T) {
	ns := []notice.Notice{
		{Kind: notice.KindSuccess, Text: "ok"},
		{Kind: notice.KindError, Text: "first"},
		{Kind: notice.KindError, Text: "second"},
	}
	assert.Equal(t, "first", firstError(ns))
	assert.Empty(t, firstError(ns[:1]))
}
