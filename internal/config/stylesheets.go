package config

import (
	"git.home.luguber.info/inful/sitecfg/internal/integrity"
	"git.home.luguber.info/inful/sitecfg/internal/util/sets"
)

// Resource returns the fetchable view of the stylesheet.
func (s Stylesheet) Resource() integrity.Resource {
	return integrity.Resource{Href: s.Href, Integrity: s.Integrity}
}

// StylesheetResources maps sheets onto integrity resources, keeping order.
func StylesheetResources(sheets []Stylesheet) []integrity.Resource {
	out := make([]integrity.Resource, len(sheets))
	for i, s := range sheets {
		out[i] = s.Resource()
	}
	return out
}

// ApplicableStylesheets drops the sheets that failed verification in report.
// The result is never nil so it can replace the configured list outright.
func ApplicableStylesheets(sheets []Stylesheet, report *integrity.Report) []Stylesheet {
	out := make([]Stylesheet, 0, len(sheets))
	if report == nil {
		return append(out, sheets...)
	}
	failed := sets.New[integrity.Resource]()
	for _, f := range report.Failed {
		failed.Add(f.Resource)
	}
	for _, s := range sheets {
		if !failed.Has(s.Resource()) {
			out = append(out, s)
		}
	}
	return out
}
