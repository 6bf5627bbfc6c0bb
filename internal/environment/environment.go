// Package environment identifies the host and target architecture/OS and
// maps them to the runtime-name spellings Electron-style build configs
// expect in template expansion (${arch}, ${platform}).
package environment

import (
	"runtime"

	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// Architecture is one of the CPU families tasje knows how to target.
//
// it's not surprising if your target isn't here, what's more surprising is
// that you're trying to use this code without extending it first.
type Architecture uint8

const (
	X86_64 Architecture = iota
	X86
	Aarch64
	ArmV7
)

// ArchitectureFromName parses the fixed lower-case spellings accepted on
// the command line: x86_64, x86, aarch64, armv7.
func ArchitectureFromName(name string) (Architecture, error) {
	switch name {
	case "x86_64":
		return X86_64, nil
	case "x86":
		return X86, nil
	case "aarch64":
		return Aarch64, nil
	case "armv7":
		return ArmV7, nil
	default:
		return 0, errs.New(errs.UnknownEnvironmentName, errUnknownArch(name))
	}
}

// RuntimeName returns the Node/Electron process.arch spelling: x64, ia32,
// arm64, or arm.
func (a Architecture) RuntimeName() string {
	switch a {
	case X86_64:
		return "x64"
	case X86:
		return "ia32"
	case Aarch64:
		return "arm64"
	case ArmV7:
		return "arm"
	default:
		return "unknown"
	}
}

func (a Architecture) String() string {
	switch a {
	case X86_64:
		return "x86_64"
	case X86:
		return "x86"
	case Aarch64:
		return "aarch64"
	case ArmV7:
		return "armv7"
	default:
		return "unknown"
	}
}

// Platform is one of the OS targets tasje knows how to target.
type Platform uint8

const (
	Linux Platform = iota
	Windows
	Darwin
)

// PlatformFromName parses the fixed lower-case spellings accepted on the
// command line: linux, windows, darwin.
func PlatformFromName(name string) (Platform, error) {
	switch name {
	case "linux":
		return Linux, nil
	case "windows":
		return Windows, nil
	case "darwin":
		return Darwin, nil
	default:
		return 0, errs.New(errs.UnknownEnvironmentName, errUnknownPlatform(name))
	}
}

// RuntimeName returns the Node/Electron process.platform spelling: linux,
// win32, or darwin.
func (p Platform) RuntimeName() string {
	switch p {
	case Linux:
		return "linux"
	case Windows:
		return "win32"
	case Darwin:
		return "darwin"
	default:
		return "unknown"
	}
}

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case Windows:
		return "windows"
	case Darwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// Environment pairs an architecture and a platform, the unit the walker
// and template expander target.
type Environment struct {
	Architecture Architecture
	Platform     Platform
}

// Host is the compile-time architecture/platform this binary runs on,
// used as the default target when none is given on the command line.
var Host = Environment{
	Architecture: hostArchitecture(),
	Platform:     hostPlatform(),
}

func hostArchitecture() Architecture {
	switch runtime.GOARCH {
	case "amd64":
		return X86_64
	case "386":
		return X86
	case "arm64":
		return Aarch64
	case "arm":
		return ArmV7
	default:
		return X86_64
	}
}

func hostPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	default:
		return Linux
	}
}

type errUnknownArch string

func (e errUnknownArch) Error() string { return "unknown architecture name: " + string(e) }

type errUnknownPlatform string

func (e errUnknownPlatform) Error() string { return "unknown platform name: " + string(e) }
