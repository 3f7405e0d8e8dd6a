package formula

// Registry is the name-keyed table of every built-in FunctionSpec, the
// single place the rest of the package (and any host) looks up a function
// by its surface name.
var Registry = buildRegistry()

func buildRegistry() map[string]*FunctionSpec {
	reg := map[string]*FunctionSpec{}
	groups := [][]*FunctionSpec{
		mathFunctions,
		textFunctions,
		dateFunctions,
		financialFunctions,
		lookupFunctions,
		foldFunctions,
		statsFunctions,
		logicalFunctions,
		errorHandlingFunctions,
		referenceFunctions,
	}
	for _, group := range groups {
		for _, spec := range group {
			if _, dup := reg[spec.Name]; dup {
				panic("formula: duplicate function registered: " + spec.Name)
			}
			reg[spec.Name] = spec
		}
	}
	return reg
}

// Lookup finds a FunctionSpec by name, the lookup a parser or smart
// constructor performs before building a Call node.
func Lookup(name string) (*FunctionSpec, bool) {
	spec, ok := Registry[name]
	return spec, ok
}
