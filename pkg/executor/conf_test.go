package executor

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestExpandHome(t *testing.T) {
	Convey("While resolving the ssh key path", t, func() {
		home, err := os.UserHomeDir()
		So(err, ShouldBeNil)

		Convey("A leading tilde should expand to the home directory", func() {
			So(expandHome("~/.ssh/id_rsa"), ShouldEqual, filepath.Join(home, ".ssh", "id_rsa"))
		})

		Convey("A bare tilde should expand to the home directory itself", func() {
			So(expandHome("~"), ShouldEqual, home)
		})

		Convey("Absolute paths should pass through untouched", func() {
			So(expandHome("/etc/ssh/benchmark_key"), ShouldEqual, "/etc/ssh/benchmark_key")
		})

		Convey("A tilde that is not a home prefix should not expand", func() {
			So(expandHome("/tmp/~key"), ShouldEqual, "/tmp/~key")
			So(expandHome("~user/.ssh/id_rsa"), ShouldEqual, "~user/.ssh/id_rsa")
		})
	})
}
