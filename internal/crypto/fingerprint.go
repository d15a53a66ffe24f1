// Package crypto encrypts stored secrets with a key bound to the device.
package crypto

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DeviceInfo holds the device characteristics that make up a fingerprint.
type DeviceInfo struct {
	UserAgent           string
	Language            string
	HardwareConcurrency int
	ScreenWidth         int
	ScreenHeight        int
	ColorDepth          int
	TimezoneOffset      int // minutes behind UTC, positive west of Greenwich
}

// Fingerprint joins the device fields with "|" in a fixed order.
func (d DeviceInfo) Fingerprint() string {
	return strings.Join([]string{
		d.UserAgent,
		d.Language,
		strconv.Itoa(d.HardwareConcurrency),
		strconv.Itoa(d.ScreenWidth),
		strconv.Itoa(d.ScreenHeight),
		strconv.Itoa(d.ColorDepth),
		strconv.Itoa(d.TimezoneOffset),
	}, "|")
}

// FingerprintSource produces the current device fingerprint.
type FingerprintSource interface {
	Fingerprint() (string, error)
}

// StaticSource always reports the same device.
type StaticSource struct {
	Device DeviceInfo
}

// Fingerprint returns the fingerprint of the fixed device.
func (s StaticSource) Fingerprint() (string, error) {
	return s.Device.Fingerprint(), nil
}

// Overrides replaces detected device fields. Empty strings and nil
// pointers keep the detected value, so a zero can be forced explicitly.
type Overrides struct {
	UserAgent           string
	Language            string
	HardwareConcurrency *int
	ScreenWidth         *int
	ScreenHeight        *int
	ColorDepth          *int
	TimezoneOffset      *int
}

// HostSource reads the fingerprint from the running host on every call.
type HostSource struct {
	Overrides Overrides
	Now       func() time.Time
}

// Fingerprint detects the host device and applies the overrides.
func (s HostSource) Fingerprint() (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	_, offsetSeconds := now().Zone()

	d := DeviceInfo{
		UserAgent:           fmt.Sprintf("smartread (%s; %s)", runtime.GOOS, runtime.GOARCH),
		Language:            hostLanguage(),
		HardwareConcurrency: runtime.NumCPU(),
		TimezoneOffset:      -offsetSeconds / 60,
	}

	o := s.Overrides
	if o.UserAgent != "" {
		d.UserAgent = o.UserAgent
	}
	if o.Language != "" {
		d.Language = o.Language
	}
	setInt(&d.HardwareConcurrency, o.HardwareConcurrency)
	setInt(&d.ScreenWidth, o.ScreenWidth)
	setInt(&d.ScreenHeight, o.ScreenHeight)
	setInt(&d.ColorDepth, o.ColorDepth)
	setInt(&d.TimezoneOffset, o.TimezoneOffset)
	return d.Fingerprint(), nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// hostLanguage turns LANG-style values such as "zh_CN.UTF-8" into "zh-CN".
func hostLanguage() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return "en-US"
}
