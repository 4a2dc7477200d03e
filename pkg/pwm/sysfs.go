package pwm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Raspberry Pi 5 (RP1) hardware PWM: BCM GPIO number to channel of the PWM
// chip, once the pins are muxed with the pwm-2chan style overlay.
var pi5Channels = map[int]int{
	12: 0,
	13: 1,
	18: 2,
	19: 3,
}

const exportSettle = 100 * time.Millisecond

// Sysfs drives the Linux PWM class.  Channel ids are BCM GPIO numbers.
type Sysfs struct {
	chipDir string
}

func NewSysfs(root string, chip int) *Sysfs {
	return &Sysfs{
		chipDir: filepath.Join(root, fmt.Sprintf("pwmchip%d", chip)),
	}
}

func (s *Sysfs) Channel(id int) (Channel, error) {
	n, ok := pi5Channels[id]
	if !ok {
		return nil, &ChannelError{Channel: id, Op: "open", Err: fmt.Errorf("GPIO%d has no hardware PWM", id)}
	}
	dir := filepath.Join(s.chipDir, fmt.Sprintf("pwm%d", n))
	if err := s.export(n, dir); err != nil {
		return nil, &ChannelError{Channel: id, Op: "export", Err: err}
	}
	ch := &sysfsChannel{id: id, dir: dir}
	if err := ch.write("period", int64(Period/time.Nanosecond)); err != nil {
		return nil, err
	}
	return ch, nil
}

func (s *Sysfs) export(n int, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(s.chipDir, "export"), []byte(strconv.Itoa(n)), 0644); err != nil {
		return err
	}
	// udev needs a moment to create the channel directory.
	time.Sleep(exportSettle)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s did not appear after export", dir)
	}
	log.Debugf("Exported %s", dir)
	return nil
}

// Close leaves the outputs running, like the hardware does when the process
// dies.
func (s *Sysfs) Close() error {
	return nil
}

type sysfsChannel struct {
	id      int
	dir     string
	enabled bool
}

func (c *sysfsChannel) Set(pulseMicroseconds int) error {
	if err := c.write("duty_cycle", int64(pulseMicroseconds)*int64(time.Microsecond)); err != nil {
		return err
	}
	if !c.enabled {
		if err := c.write("enable", 1); err != nil {
			return err
		}
		c.enabled = true
	}
	return nil
}

func (c *sysfsChannel) write(attr string, v int64) error {
	err := os.WriteFile(filepath.Join(c.dir, attr), []byte(strconv.FormatInt(v, 10)), 0644)
	if err != nil {
		return &ChannelError{Channel: c.id, Op: "write " + attr, Err: err}
	}
	return nil
}
