package device

import (
	"strconv"
	"sync"

	"github.com/golang/glog"
)

// SimLED is an in-memory LED.
type SimLED struct {
	value   string
	updates int
	lock    sync.Mutex
}

// SetLED implements LED.
func (l *SimLED) SetLED(value string) error {
	l.lock.Lock()
	l.value = value
	l.updates++
	l.lock.Unlock()
	glog.V(2).Infof("sim: LED=%q", value)
	return nil
}

// State returns the last value and the number of updates.
func (l *SimLED) State() (string, int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.value, l.updates
}

// SimHeater is an in-memory heater with a settable reading.
type SimHeater struct {
	value float64
	lock  sync.RWMutex
}

// Set updates the reading.
func (h *SimHeater) Set(value float64) {
	h.lock.Lock()
	h.value = value
	h.lock.Unlock()
}

// HeaterValue implements Heater.
func (h *SimHeater) HeaterValue() (string, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return strconv.FormatFloat(h.value, 'f', -1, 64), nil
}
