package conf

import (
	"fmt"
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

const stringListDelimiter = ","

// StringListVar is a custom kingpin parser which resolves flag's parameters
// which consist of a string slice delimited by `stringListDelimiter`.
// For instance for flag defined like this:
// `flag = StringList(kingpin.Flag("flag_name", "help"))`
//
// When user specifies options `--flag_name=A,B --flag_name=C` the `flag`
// variable will be a slice with A,B,C items.
type StringListVar []string

// Set parses the input string and appends it as a slice. Implements kingpin.Value.
func (s *StringListVar) Set(value string) error {
	*s = append(*s, strings.Split(value, stringListDelimiter)...)
	return nil
}

// String returns string value from StringListVar. Implements kingpin.Value.
func (s *StringListVar) String() string {
	return fmt.Sprintf("%v", *s)
}

// IsCumulative implements optional interface (kingpin.repeatableFlag) for
// flags that can be repeated.
func (s *StringListVar) IsCumulative() bool {
	return true
}

// StringList is a helper for defining kingpin flags.
func StringList(s kingpin.Settings) (target *[]string) {
	target = new([]string)
	s.SetValue((*StringListVar)(target))
	return
}
