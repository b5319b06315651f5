//go:build !js_eval

package props

// NewJSEvaluator returns nil unless the binary is built with the js_eval tag.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = applyJSEvaluatorOptions(opts)
	return nil
}

// JSAvailable reports whether the binary was built with the js_eval tag.
func JSAvailable() bool {
	return false
}
