package pwm

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Oldest writes are dropped beyond this so long dry runs stay bounded.
const maxDummyWrites = 4096

type Write struct {
	Channel int
	Pulse   int
}

// DummyDriver records writes instead of touching hardware.
type DummyDriver struct {
	lock   sync.Mutex
	writes []Write
	last   map[int]int
}

func Dummy() *DummyDriver {
	return &DummyDriver{last: map[int]int{}}
}

func (d *DummyDriver) Channel(id int) (Channel, error) {
	return &dummyChannel{id: id, d: d}, nil
}

func (d *DummyDriver) Close() error {
	return nil
}

func (d *DummyDriver) Writes() []Write {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]Write(nil), d.writes...)
}

func (d *DummyDriver) Last(id int) (int, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	p, ok := d.last[id]
	return p, ok
}

type dummyChannel struct {
	id int
	d  *DummyDriver
}

func (c *dummyChannel) Set(pulseMicroseconds int) error {
	log.Debugf("DPWM: Set channel=%v pulse=%v", c.id, pulseMicroseconds)
	c.d.lock.Lock()
	c.d.writes = append(c.d.writes, Write{Channel: c.id, Pulse: pulseMicroseconds})
	if len(c.d.writes) > maxDummyWrites {
		c.d.writes = append([]Write(nil), c.d.writes[len(c.d.writes)-maxDummyWrites/2:]...)
	}
	c.d.last[c.id] = pulseMicroseconds
	c.d.lock.Unlock()
	return nil
}
