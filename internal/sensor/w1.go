package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultW1Glob matches DS18B20 devices exposed by the Linux w1-therm driver.
const DefaultW1Glob = "/sys/bus/w1/devices/28-*/w1_slave"

var (
	errNoDevice   = errors.New("no 1-wire temperature device found")
	errCRC        = errors.New("1-wire CRC check failed")
	errBadPayload = errors.New("malformed w1_slave payload")
)

// W1Probe reads a DS18B20 through the kernel w1-therm sysfs interface.
// Reading w1_slave blocks for the full conversion time.
type W1Probe struct {
	path string
}

// NewW1Probe resolves the first device matching pattern.
func NewW1Probe(pattern string) (*W1Probe, error) {
	if pattern == "" {
		pattern = DefaultW1Glob
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoDevice, pattern)
	}
	return &W1Probe{path: matches[0]}, nil
}

// Path returns the w1_slave file being read.
func (p *W1Probe) Path() string { return p.path }

// ReadRaw reads and parses one conversion.
func (p *W1Probe) ReadRaw() (float64, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", p.path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", p.path, err)
	}
	return parseW1Slave(lines)
}

// parseW1Slave extracts the temperature from the two-line w1_slave format:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func parseW1Slave(lines []string) (float64, error) {
	if len(lines) < 2 {
		return 0, errBadPayload
	}
	if !strings.HasSuffix(strings.TrimSpace(lines[0]), "YES") {
		return 0, errCRC
	}
	idx := strings.LastIndex(lines[1], "t=")
	if idx < 0 {
		return 0, errBadPayload
	}
	milli, err := strconv.Atoi(strings.TrimSpace(lines[1][idx+2:]))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return float64(milli) / 1000.0, nil
}
