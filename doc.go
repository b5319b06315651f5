// Package props is a process wide property table.
//
// Values come from property resources found on a classpath (see
// pkg/resource) and from programmatic overrides. Each resource is loaded at
// most once per table; later resources win per key.
//
//	if err := props.AddPropertyFile("conf/app.properties"); err != nil {
//	    return err
//	}
//	limit, err := props.GetLongGlobalPropertyDefault("app.limit", 50)
//
// The table also owns the process time source, so tests can pin
// CurrentTime with FixedTime, and it can evaluate expressions over its
// values with expr, CEL or (behind the js_eval build tag) JavaScript.
//
// The package level functions operate on Default. Reset swaps in a fresh
// default table, which keeps tests isolated.
package props
