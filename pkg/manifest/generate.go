package manifest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/errors"
)

// DefaultSecretBytes is the size of %generate(secret)% without an argument
const DefaultSecretBytes = 16

// GenerateDirective matches %generate(...)% in an env var value
var GenerateDirective = regexp.MustCompile(`%generate\(([^)]*)\)%`)

// SecretSize returns the number of random bytes a %generate(...)% match asks
// for. ok is false for generators other than secret, which are written as
// they are.
func SecretSize(match string) (size int, ok bool, err error) {
	sub := GenerateDirective.FindStringSubmatch(match)
	if sub == nil {
		return 0, false, nil
	}
	args := strings.Split(sub[1], ",")
	if strings.TrimSpace(args[0]) != "secret" {
		return 0, false, nil
	}
	switch len(args) {
	case 1:
		return DefaultSecretBytes, true, nil
	case 2:
		n, convErr := strconv.Atoi(strings.TrimSpace(args[1]))
		if convErr != nil || n <= 0 {
			return 0, true, errors.Newf(errors.ErrValidation, "invalid secret size in %q", match)
		}
		return n, true, nil
	default:
		return 0, true, errors.Newf(errors.ErrValidation, "too many arguments in %q", match)
	}
}

func checkGenerate(name, value string) error {
	for _, match := range GenerateDirective.FindAllString(value, -1) {
		if _, _, err := SecretSize(match); err != nil {
			return invalid(KindSetEnvVars, "value of %q has a malformed directive %s", name, match)
		}
	}
	return nil
}
