package executor

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLocal(t *testing.T) {
	Convey("While using Local executor", t, func() {
		l := NewLocal()

		Convey("The executor should have a proper name", func() {
			So(l.Name(), ShouldEqual, "Local")
		})

		Convey("When command ends successfully", func() {
			handle, err := l.Execute("echo output")
			So(err, ShouldBeNil)

			terminated := handle.Wait(5 * time.Second)
			So(terminated, ShouldBeTrue)
			So(handle.Status(), ShouldEqual, TERMINATED)

			exitCode, err := handle.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 0)
			So(handle.Output(), ShouldContainSubstring, "output")
		})

		Convey("When command fails", func() {
			handle, err := l.Execute("exit 3")
			So(err, ShouldBeNil)

			So(handle.Wait(5*time.Second), ShouldBeTrue)

			exitCode, err := handle.ExitCode()
			So(err, ShouldBeNil)
			So(exitCode, ShouldEqual, 3)
		})

		Convey("When command is still running", func() {
			handle, err := l.Execute("sleep 30")
			So(err, ShouldBeNil)

			So(handle.Status(), ShouldEqual, RUNNING)
			_, err = handle.ExitCode()
			So(err, ShouldNotBeNil)

			Convey("Wait with a short timeout returns false", func() {
				So(handle.Wait(50*time.Millisecond), ShouldBeFalse)
			})

			Convey("Stop terminates the process group", func() {
				So(handle.Stop(), ShouldBeNil)
				So(handle.Status(), ShouldEqual, TERMINATED)

				exitCode, err := handle.ExitCode()
				So(err, ShouldBeNil)
				// Negated signal number is reported for killed tasks.
				So(exitCode, ShouldEqual, -9)

				Convey("Stopping it again is a no-op", func() {
					So(handle.Stop(), ShouldBeNil)
				})
			})

			Reset(func() {
				handle.Stop()
			})
		})
	})
}
