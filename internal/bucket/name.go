package bucket

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

// ErrInvalidName is returned for names S3 would reject.
var ErrInvalidName = errors.New("invalid bucket name")

var nameRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

// ValidateName checks name against the S3 general purpose bucket naming rules.
func ValidateName(name string) error {
	switch {
	case !nameRegexp.MatchString(name):
		return fmt.Errorf("%w %q: must be 3 to 63 lowercase letters, digits, dots or hyphens, starting and ending with a letter or digit", ErrInvalidName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w %q: must not contain two adjacent dots", ErrInvalidName, name)
	case net.ParseIP(name) != nil:
		return fmt.Errorf("%w %q: must not be formatted as an IP address", ErrInvalidName, name)
	case strings.HasPrefix(name, "xn--"), strings.HasPrefix(name, "sthree-"):
		return fmt.Errorf("%w %q: reserved prefix", ErrInvalidName, name)
	case strings.HasSuffix(name, "-s3alias"), strings.HasSuffix(name, "--ol-s3"):
		return fmt.Errorf("%w %q: reserved suffix", ErrInvalidName, name)
	}

	return nil
}
