package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// JVMInfo is what a java executable reports about itself
type JVMInfo struct {
	Vendor string
	// Major is the feature release, 8 for "1.8.0_392" and 17 for "17.0.9".
	// Zero when the version could not be read.
	Major int
}

// Name is the label a runtime is listed under
func (i JVMInfo) Name() string {
	return fmt.Sprintf("%s %d", i.Vendor, i.Major)
}

// InspectJVM runs javaPath once and reads its vendor and major version
func InspectJVM(ctx context.Context, javaPath string) (JVMInfo, error) {
	// #nosec G204 - the path is chosen by the user registering the runtime
	cmd := exec.CommandContext(ctx, javaPath, "-XshowSettings:properties", "-version")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return JVMInfo{}, fmt.Errorf("failed to run %s: %w", javaPath, err)
	}

	info, ok := parseJVMProperties(out)
	if !ok {
		return JVMInfo{}, fmt.Errorf("%s did not report java.version", javaPath)
	}
	return info, nil
}

func parseJVMProperties(out []byte) (JVMInfo, bool) {
	var info JVMInfo
	var found bool

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "java.vendor":
			info.Vendor = strings.TrimSpace(value)
		case "java.version":
			info.Major = majorVersion(strings.TrimSpace(value))
			found = true
		}
	}
	if info.Vendor == "" {
		info.Vendor = "Unknown"
	}
	return info, found
}

func majorVersion(version string) int {
	parts := strings.Split(version, ".")
	major := parts[0]
	if major == "1" && len(parts) > 1 {
		major = parts[1]
	}

	end := 0
	for end < len(major) && major[end] >= '0' && major[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(major[:end])
	if err != nil {
		return 0
	}
	return n
}
