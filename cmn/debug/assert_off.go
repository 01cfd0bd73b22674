//go:build nodebug

package debug

func Assert(bool)                          {}
func AssertMsg(bool, string)               {}
func AssertNoErr(error)                    {}
func Assertf(bool, string, ...interface{}) {}
