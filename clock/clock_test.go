package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingSubscriber struct{ total uint32 }

func (c *countingSubscriber) Tick(cycles uint8) { c.total += uint32(cycles) }

func TestAddFansOutToSubscribersInOrder(t *testing.T) {
	bus := NewBus()
	bus.DisablePacing()
	var order []int
	a := &orderedSubscriber{id: 1, order: &order}
	b := &orderedSubscriber{id: 2, order: &order}
	bus.Subscribe(a)
	bus.Subscribe(b)

	bus.Add(4)

	assert.Equal(t, []int{1, 2}, order)
}

type orderedSubscriber struct {
	id    int
	order *[]int
}

func (o *orderedSubscriber) Tick(cycles uint8) { *o.order = append(*o.order, o.id) }

func TestAddSumsCyclesAcrossSubscribers(t *testing.T) {
	bus := NewBus()
	bus.DisablePacing()
	s1 := &countingSubscriber{}
	s2 := &countingSubscriber{}
	bus.Subscribe(s1)
	bus.Subscribe(s2)

	bus.Add(4)
	bus.Add(12)

	assert.Equal(t, uint32(16), s1.total)
	assert.Equal(t, uint32(16), s2.total)
}
