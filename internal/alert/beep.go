// Package alert sounds the audible notification for matching submissions.
package alert

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

// Beeper plays a tone through the platform's beep facility.
type Beeper struct {
	beep func(freq float64, durationMs int) error
}

func NewBeeper() *Beeper {
	return &Beeper{beep: beeep.Beep}
}

// Alert plays a freqHz tone for durationMs. Failures are alert errors,
// which never stop the monitor.
func (b *Beeper) Alert(freqHz, durationMs int) error {
	if err := b.beep(float64(freqHz), durationMs); err != nil {
		return domain.E(domain.KindAlert, fmt.Sprintf("beep %dHz/%dms", freqHz, durationMs), err)
	}
	return nil
}
