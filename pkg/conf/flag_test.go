package conf

import (
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// Flags are registered once at package level since the registry rejects
// duplicate definitions.
var (
	intFlag      = NewIntFlag("int_arg", "help", 42)
	boolFlag     = NewBoolFlag("bool_arg", "help", false)
	durationFlag = NewDurationFlag("duration_arg", "help", time.Second)
	floatFlag    = NewFloatFlag("float_arg", "help", 0.95)
	sliceFlag    = NewSliceFlag("slice_arg", "help", "a", "b")
)

func TestFlags(t *testing.T) {
	Convey("While defining flags of different types", t, func() {
		Convey("Int flag parses value from environment", func() {
			defer intFlag.clear()

			os.Setenv(intFlag.envName(), "128")
			So(ParseEnv(), ShouldBeNil)
			So(intFlag.Value(), ShouldEqual, 128)
			So(intFlag.stringValue(), ShouldEqual, "128")
		})

		Convey("Bool flag parses value from environment", func() {
			defer boolFlag.clear()

			os.Setenv(boolFlag.envName(), "true")
			So(ParseEnv(), ShouldBeNil)
			So(boolFlag.Value(), ShouldBeTrue)
		})

		Convey("Duration flag parses value from environment", func() {
			defer durationFlag.clear()

			os.Setenv(durationFlag.envName(), "2m")
			So(ParseEnv(), ShouldBeNil)
			So(durationFlag.Value(), ShouldEqual, 2*time.Minute)
		})

		Convey("Float flag parses value from environment", func() {
			defer floatFlag.clear()

			os.Setenv(floatFlag.envName(), "0.99")
			So(ParseEnv(), ShouldBeNil)
			So(floatFlag.Value(), ShouldEqual, 0.99)
		})

		Convey("Slice flag splits value on commas", func() {
			defer sliceFlag.clear()

			os.Setenv(sliceFlag.envName(), "c,d,e")
			So(ParseEnv(), ShouldBeNil)
			// The parser is cumulative so assert on membership, not exact shape.
			So(sliceFlag.Value(), ShouldContain, "c")
			So(sliceFlag.Value(), ShouldContain, "d")
			So(sliceFlag.Value(), ShouldContain, "e")
		})
	})
}
