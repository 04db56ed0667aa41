package gstcam

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var deviceNumberRE = regexp.MustCompile(`video(\d+)$`)

// scanDevices lists capture nodes matching pattern, ordered by device
// number. Paths that do not end in videoN are ignored; metadata nodes
// and by-id symlinks stay out of the index space.
func scanDevices(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("gstcam: scan %q: %w", pattern, err)
	}
	devices := matches[:0]
	for _, m := range matches {
		if extractDeviceNumber(m) >= 0 {
			devices = append(devices, m)
		}
	}
	sort.Slice(devices, func(i, j int) bool {
		return extractDeviceNumber(devices[i]) < extractDeviceNumber(devices[j])
	})
	return devices, nil
}

// extractDeviceNumber pulls N out of a /dev/videoN path, -1 when the path
// is not a capture node.
func extractDeviceNumber(path string) int {
	m := deviceNumberRE.FindStringSubmatch(path)
	if len(m) < 2 {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// deviceName resolves the kernel's card name for a capture node through
// sysfs, falling back to the node name when unavailable.
func deviceName(path string) string {
	base := filepath.Base(path)
	raw, err := os.ReadFile(filepath.Join("/sys/class/video4linux", base, "name"))
	if err != nil {
		return base
	}
	if name := strings.TrimSpace(string(raw)); name != "" {
		return name
	}
	return base
}
