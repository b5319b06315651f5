package props

import "reflect"

// GetNonzeroLimited clamps a caller supplied count. Values below one mean
// "use the maximum"; anything else is capped at max. When max itself is below
// one the result is max.
func GetNonzeroLimited(provided, max int) int {
	if provided < 1 {
		provided = max
	}
	return min(provided, max)
}

// PropertyName builds the conventional attribute key for the type of v:
// "<package path>.<type name>.attr.<attribute>". Pointers are dereferenced.
// Types without a package path (builtins, unnamed composites) render as
// their type string.
func PropertyName(v any, attribute string) string {
	return propertyName(reflect.TypeOf(v), attribute)
}

// PropertyNameOf is PropertyName for a type parameter.
func PropertyNameOf[T any](attribute string) string {
	return propertyName(reflect.TypeFor[T](), attribute)
}

func propertyName(t reflect.Type, attribute string) string {
	if t == nil {
		return "nil.attr." + attribute
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return t.String() + ".attr." + attribute
	}
	if pkg := t.PkgPath(); pkg != "" {
		name = pkg + "." + name
	}
	return name + ".attr." + attribute
}
