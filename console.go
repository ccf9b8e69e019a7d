package xc

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// The console suite: an object value with log/error/warn/info function
// properties, each writing through the runtime logger.

func consoleWriter(level logrus.Level) NativeFunc {
	return func(rt *Runtime, this *Value, args []*Value, closure *Value) *Value {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = rt.ToString(a)
		}
		rt.log.WithField("component", "console").Log(level, strings.Join(parts, " "))
		return nil
	}
}

func newConsoleValue(rt *Runtime) *Value {
	console := rt.NewObject()
	for name, level := range map[string]logrus.Level{
		"log":   logrus.InfoLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
	} {
		fn := rt.NewFunction("console."+name, -1, nil, consoleWriter(level))
		objectPut(console, name, fn)
		rt.dropRef(fn)
	}
	rt.MarkPermanent(console)
	return console
}
