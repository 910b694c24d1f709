package puppetfacts

// CommonFacts are versions of the surrounding toolchain, added to every
// fact set. Empty fields are left out.
type CommonFacts struct {
	PuppetVersion string
	RubyVersion   string
	RubySiteDir   string
	AugeasVersion string
	MCOVersion    string
}

// facts returns the non-empty common facts keyed by fact name.
func (c CommonFacts) facts() map[string]string {
	out := make(map[string]string, 5)
	set := func(name, value string) {
		if value != "" {
			out[name] = value
		}
	}
	set("puppetversion", c.PuppetVersion)
	set("rubyversion", c.RubyVersion)
	set("rubysitedir", c.RubySiteDir)
	set("augeasversion", c.AugeasVersion)
	set("mco_version", c.MCOVersion)
	return out
}
