package cliapp

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// ProtectFlags returns copies of the given flags, so that parsing into one
// cli.App does not leak values into another that shares the flag definitions.
func ProtectFlags(flags []cli.Flag) []cli.Flag {
	out := make([]cli.Flag, 0, len(flags))
	for _, f := range flags {
		fCopy, err := cloneFlag(f)
		if err != nil {
			panic(fmt.Errorf("failed to clone flag %q: %w", f.Names()[0], err))
		}
		out = append(out, fCopy)
	}
	return out
}

func cloneFlag(f cli.Flag) (cli.Flag, error) {
	switch typedFlag := f.(type) {
	case *cli.StringFlag:
		v := *typedFlag
		return &v, nil
	case *cli.BoolFlag:
		v := *typedFlag
		return &v, nil
	case *cli.IntFlag:
		v := *typedFlag
		return &v, nil
	case *cli.Uint64Flag:
		v := *typedFlag
		return &v, nil
	case *cli.Float64Flag:
		v := *typedFlag
		return &v, nil
	case *cli.DurationFlag:
		v := *typedFlag
		return &v, nil
	case *cli.GenericFlag:
		v := *typedFlag
		if cl, ok := typedFlag.Value.(interface{ Clone() any }); ok {
			v.Value = cl.Clone().(cli.Generic)
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("unsupported flag type %T", f)
	}
}
