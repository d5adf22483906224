package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type footerGroupDoc struct {
	Title string       `yaml:"title"`
	Items []FooterLink `yaml:"items"`
	Links []FooterLink `yaml:"links"`
}

// UnmarshalYAML accepts both "items" and the "links" alias for a group's entries.
func (g *FooterGroup) UnmarshalYAML(value *yaml.Node) error {
	var doc footerGroupDoc
	if err := value.Decode(&doc); err != nil {
		return err
	}
	if len(doc.Items) > 0 && len(doc.Links) > 0 {
		return fmt.Errorf("footer group %q: items and links are mutually exclusive", doc.Title)
	}
	g.Title = doc.Title
	g.Items = doc.Items
	if len(g.Items) == 0 {
		g.Items = doc.Links
	}
	if len(g.Items) == 0 {
		g.Items = nil
	}
	return nil
}

// walkFooter visits every footer link with its configuration path.
func walkFooter(f Footer, fn func(path string, link FooterLink)) {
	for gi, group := range f.Links {
		for li, link := range group.Items {
			fn(fmt.Sprintf("themeConfig.footer.links[%d].items[%d]", gi, li), link)
		}
	}
}
