package screen

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/fogleman/gg"
	log "github.com/sirupsen/logrus"

	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/drive"
	"github.com/UOW-TronSoc/ARCH2025-Roo/pkg/pulse"
)

// Size of the square 16-bit colour panel.
const Size = 128

const refreshInterval = 500 * time.Millisecond

// Panel shows the mode and the four output pulse widths as bars.
type Panel struct {
	lock sync.Mutex
	mode string
	snap drive.Snapshot
}

func NewPanel(mode string) *Panel {
	return &Panel{
		mode: mode,
		snap: drive.Snapshot{
			Yaw:   pulse.NeutralPulse,
			Pitch: pulse.NeutralPulse,
			Left:  pulse.NeutralPulse,
			Right: pulse.NeutralPulse,
		},
	}
}

// Update is safe to call from the control loop.
func (p *Panel) Update(s drive.Snapshot) {
	p.lock.Lock()
	p.snap = s
	p.lock.Unlock()
}

func (p *Panel) Render() image.Image {
	p.lock.Lock()
	mode, snap := p.mode, p.snap
	p.lock.Unlock()

	dc := gg.NewContext(Size, Size)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.SetRGBA(1, 0.9, 0, 1)
	dc.DrawString(mode, 4, 12)

	for i, b := range []struct {
		label string
		value int
	}{
		{"Y", snap.Yaw},
		{"P", snap.Pitch},
		{"L", snap.Left},
		{"R", snap.Right},
	} {
		dc.Push()
		dc.Translate(8+float64(i)*30, 20)
		drawPulseBar(dc, b.label, b.value)
		dc.Pop()
	}
	return dc.Image()
}

const barHeight = 80

func drawPulseBar(dc *gg.Context, label string, value int) {
	fill := float64(value-pulse.MinPulse) / (pulse.MaxPulse - pulse.MinPulse)
	if fill < 0 || fill > 1 {
		// Outside the servo band.
		dc.SetRGBA(1, 0.2, 0, 1)
		fill = min(max(fill, 0), 1)
	} else {
		dc.SetRGBA(1, 0.9, 0, 1)
	}
	dc.DrawRectangle(0, 0, 20, barHeight)
	dc.Stroke()
	dc.DrawRectangle(2, barHeight*(1-fill), 16, barHeight*fill)
	dc.Fill()
	// Neutral mark.
	dc.DrawLine(-2, barHeight/2, 22, barHeight/2)
	dc.Stroke()
	dc.DrawString(label, 6, barHeight+12)
	dc.DrawString(fmt.Sprintf("%d", value), -2, barHeight+24)
}

// Encode packs the image as RGB565, rotated to match the panel's mounting.
func Encode(img image.Image) []byte {
	buf := make([]byte, Size*Size*2)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			r, g, b, _ := img.At(x, y).RGBA() // 16-bit pre-multiplied

			rb := byte(r >> (16 - 5))
			gb := byte(g >> (16 - 6)) // Green has 6 bits
			bb := byte(b >> (16 - 5))

			buf[(Size-1-y)*2+x*Size*2+1] = (rb << 3) | (gb >> 3)
			buf[(Size-1-y)*2+x*Size*2] = bb | (gb << 5)
		}
	}
	return buf
}

// Loop redraws the panel on the framebuffer device until the context is
// done, then blanks it.  A missing screen is not an error.
func (p *Panel) Loop(ctx context.Context, device string) error {
	f, err := os.OpenFile(device, os.O_RDWR, 0666)
	if err != nil {
		log.Warnf("Failed to open screen %s, ignoring: %v", device, err)
		return nil
	}
	defer f.Close()

	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = writeFrame(f, make([]byte, Size*Size*2))
			return nil
		case <-ticker.C:
			if err := writeFrame(f, Encode(p.Render())); err != nil {
				log.Errorf("Screen failure: %v", err)
				return nil
			}
		}
	}
}

func writeFrame(f *os.File, buf []byte) error {
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	// One column at a time; the SPI panel driver drops data on large writes.
	const chunk = Size * 2
	for i := 0; i < len(buf); i += chunk {
		if _, err := f.Write(buf[i : i+chunk]); err != nil {
			return err
		}
		time.Sleep(10 * time.Microsecond)
	}
	return nil
}
