package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

type buildFlags struct {
	version    string
	hostOS     string
	hostArch   string
	targetOS   string
	targetArch string
	noCache    bool
}

func BuildCmd() *cobra.Command {
	var f buildFlags
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the i2cm cli for the host or a cross target",
		RunE: func(cmd *cobra.Command, args []string) error {
			// native toolchain when the requested host matches this machine,
			// the pinned docker toolchain otherwise
			if f.hostOS == runtime.GOOS && f.hostArch == runtime.GOARCH {
				return build.GoBuild("dist/i2cm", "./cmd/i2cm", build.GoBuildOpts{
					Version:       f.version,
					InjectVersion: true,
					ConfigPackage: "github.com/mklimuk/i2cm/config",
					EnableCgo:     true,
					OS:            f.targetOS,
					Arch:          f.targetArch,
				})
			}
			devBin := fmt.Sprintf("./dev-%s-%s", f.hostOS, f.hostArch)
			return build.Docker(cmd.Context(), devBin, []string{
				"build",
				"--version", f.version,
				"--target-os", f.targetOS,
				"--target-arch", f.targetArch,
			}, build.DockerBuildOpts{
				NoCache: f.noCache,
				Image:   "gophertribe/gobuild:1.25-bookworm",
			})
		},
	}
	cmd.Flags().StringVar(&f.version, "version", "latest", "version stamped into the binary")
	cmd.Flags().StringVar(&f.hostOS, "os", runtime.GOOS, "os the build runs on")
	cmd.Flags().StringVar(&f.hostArch, "arch", runtime.GOARCH, "arch the build runs on")
	cmd.Flags().StringVar(&f.targetOS, "target-os", "", "os to cross-compile for, defaults to the host os")
	cmd.Flags().StringVar(&f.targetArch, "target-arch", "", "arch to cross-compile for, defaults to the host arch")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "rebuild the docker image from scratch")

	return cmd
}
