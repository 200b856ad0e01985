package vm

import "time"

// clockNative implements clock(): seconds since process start, as the
// one native binding the language ships with.
var processStart = time.Now()

func clockNative(args []Value) Value {
	return NumberValue(time.Since(processStart).Seconds())
}
