package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadMasks reads masks from a file, one per line.
// Format:
//
//	*.go       → mask
//	src/*.h    → mask with a directory part
//	# comment  → skip
//	blank line → skip
func LoadMasks(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mask file: %w", err)
	}
	defer f.Close()

	var masks []string
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.ContainsRune(line, 0) {
			return nil, fmt.Errorf("mask file %s line %d: NUL byte in mask", path, lineNum)
		}
		masks = append(masks, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mask file %s: %w", path, err)
	}
	return masks, nil
}
