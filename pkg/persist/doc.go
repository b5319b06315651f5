// Package persist is a persistent property store with a swappable Provider.
//
// Reads go to the active provider first. The fallback variants then consult
// a props.Table (props.Default unless configured) and finally an optional
// caller default:
//
//	provider, err := cborfile.Open("state/props.cbor")
//	if err != nil {
//	    return err
//	}
//	persist.SetProvider(provider)
//	limit, err := persist.GetIntegerPropertyWithFallbackDefault("app.limit", 3)
//
// The provider slot is never empty. Installing nil puts a fresh
// MemoryProvider back in place.
//
// Types that own several properties implement KeyMapper and read them
// through Namespace, which derives the storage key from a field token.
package persist
