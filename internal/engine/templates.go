package engine

// DefaultSBYTemplate returns the unsubstituted default SymbiYosys
// project file template, the same shape defaultSBY renders with
// concrete values, but exposed so `formalchip doctor --print-template`
// can show (or an operator can copy and customize) the baseline .sby
// shape without reading source.
func DefaultSBYTemplate() string {
	return `[options]
mode prove
depth 20

[engines]
smtbmc

[script]
read -formal {{RTL_FILES}}
read -formal {{PROPERTY_FILE}}
prep -top {{TOP_MODULE}}

[files]
{{RTL_FILES}}
{{PROPERTY_FILE}}
`
}
