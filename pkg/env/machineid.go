package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine id so the device id doesn't expose it.
const AppID = "ucl"

// MachineID retrieves the unique ID identifying the machine, or "" when
// the platform doesn't provide one.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return ""
	}
	return id
}
