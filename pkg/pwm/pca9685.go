package pwm

import (
	"fmt"
	"time"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pca9685"
)

// PCA9685 drives the 16 channel I2C servo board.  Channel ids are board
// ports.
type PCA9685 struct {
	board pca9685.Interface
}

func NewPCA9685(deviceFile string) (*PCA9685, error) {
	board, err := pca9685.New(deviceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCA9685: %w", err)
	}
	d, err := FromPCA9685(board)
	if err != nil {
		_ = board.Close()
		return nil, err
	}
	return d, nil
}

// FromPCA9685 configures an already open board.
func FromPCA9685(board pca9685.Interface) (*PCA9685, error) {
	if err := board.Configure(); err != nil {
		return nil, fmt.Errorf("failed to configure PCA9685: %w", err)
	}
	return &PCA9685{board: board}, nil
}

func (p *PCA9685) Channel(id int) (Channel, error) {
	if id < 0 || id >= pca9685.NumPorts {
		return nil, &ChannelError{Channel: id, Op: "open", Err: fmt.Errorf("expected 0 <= port < %d", pca9685.NumPorts)}
	}
	return &pca9685Channel{id: id, board: p.board}, nil
}

func (p *PCA9685) Close() error {
	return p.board.Close()
}

type pca9685Channel struct {
	id    int
	board pca9685.Interface
}

func (c *pca9685Channel) Set(pulseMicroseconds int) error {
	if err := c.board.SetPulse(c.id, time.Duration(pulseMicroseconds)*time.Microsecond); err != nil {
		return &ChannelError{Channel: c.id, Op: "set", Err: err}
	}
	return nil
}
