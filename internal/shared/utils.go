// Package shared provides small helpers used by the attachment store:
// random identifiers and human-readable byte sizes.
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes to generate before
// encoding them as a hexadecimal string, so the final string is twice as long.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB"}

// DisplaySize renders a byte count using binary (1024-based) units with at
// most one decimal place, e.g. 0 -> "0 Bytes", 1024 -> "1 KB", 1536 -> "1.5 KB".
//
// The unit is the largest one the value reaches, so the unit never goes
// down as the byte count grows. Negative sizes are clamped to zero.
func DisplaySize(bytes int64) string {
	if bytes < 1024 {
		if bytes < 0 {
			bytes = 0
		}
		return strconv.FormatInt(bytes, 10) + " " + sizeUnits[0]
	}

	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}

	// round first so 1023.96 KB does not print as "1024 KB"
	size = math.Round(size*10) / 10
	if size >= 1024 && unit < len(sizeUnits)-1 {
		size = math.Round(size/1024*10) / 10
		unit++
	}

	return humanize.FtoaWithDigits(size, 1) + " " + sizeUnits[unit]
}
