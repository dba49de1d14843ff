//go:build windows

package main

import (
	"golang.org/x/sys/windows"

	"screen-region-select/src/logutil"
)

var (
	shcore                     = windows.NewLazySystemDLL("shcore.dll")
	procSetProcessDpiAwareness = shcore.NewProc("SetProcessDpiAwareness")
	user32                     = windows.NewLazySystemDLL("user32.dll")
	procSetProcessDPIAware     = user32.NewProc("SetProcessDPIAware")
)

// enableDPIAwareness sets per-monitor DPI awareness so cursor positions and
// window sizes are in physical pixels.
func enableDPIAwareness() {
	const processPerMonitorDPIAware = 2
	if err := procSetProcessDpiAwareness.Find(); err == nil {
		ret, _, _ := procSetProcessDpiAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			logutil.Debugf("DPI: per-monitor DPI awareness set")
		} else {
			logutil.Warnf("DPI: SetProcessDpiAwareness failed, code %d", ret)
		}
		return
	}

	if err := procSetProcessDPIAware.Find(); err == nil {
		if ret, _, _ := procSetProcessDPIAware.Call(); ret == 0 {
			logutil.Warnf("DPI: SetProcessDPIAware failed")
		}
		return
	}
	logutil.Debugf("DPI: no DPI awareness API available")
}
