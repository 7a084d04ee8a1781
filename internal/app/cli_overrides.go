package app

import (
	"fmt"
	"strings"

	"github.com/olusolaa/oneroster-parity/internal/config"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

const Usage = "oneroster-parity <tables|envelopes> [ds4|ds5] [endpoint]"

// ParseArgs reads the positional arguments. The first one is the dataset
// version when isVersion accepts it, otherwise it is the endpoint filter and
// the version defaults to ds5.
func ParseArgs(args []string, isVersion func(string) bool) (version, endpoint string, err error) {
	version = config.DefaultDataset
	switch {
	case len(args) > 2:
		return "", "", errors.NewUserFacing(errors.CodeInvalidArgument,
			fmt.Sprintf("too many arguments: %s", strings.Join(args, " ")),
			"Usage: "+Usage)
	case len(args) == 0:
		return version, "", nil
	}

	first := strings.TrimSpace(args[0])
	if isVersion(first) {
		version = strings.ToLower(first)
		if len(args) == 2 {
			endpoint = strings.TrimSpace(args[1])
		}
		return version, endpoint, nil
	}
	if len(args) == 2 {
		return "", "", errors.NewUserFacing(errors.CodeInvalidArgument,
			fmt.Sprintf("unknown dataset version %q", first),
			"Usage: "+Usage)
	}
	return version, first, nil
}
