// Tulpa is an embedded fact and expression evaluation engine for
// autonomous chat entities.
//
// It decides, for every incoming chat event, whether an entity should
// respond, suppress, or defer its response, driven by the entity's fact
// list: a small sandboxed expression language, a static regex-safety
// analyzer, and permission directives.
//
// Usage:
//
//	# Run the engine against an entity directory
//	tulpa run --config config.yaml
//
//	# Evaluate an expression against a sample context
//	tulpa eval 'mentioned && random() < 0.5'
//
//	# Pre-flight a regex pattern
//	tulpa check '(?:a+)+'
//
//	# Show version information
//	tulpa version
package main

func main() {
	Execute()
}
