package config

import "slices"

// Clone returns a deep copy of c. Nil lists stay nil.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.Presets != nil {
		out.Presets = make([]Preset, len(c.Presets))
		for i, p := range c.Presets {
			p.Docs = p.Docs.clone()
			p.Blog = p.Blog.clone()
			p.Pages = p.Pages.clone()
			out.Presets[i] = p
		}
	}
	out.Stylesheets = slices.Clone(c.Stylesheets)
	out.ThemeConfig.Navbar = c.ThemeConfig.Navbar.clone()
	out.ThemeConfig.Footer.Links = cloneFooterGroups(c.ThemeConfig.Footer.Links)
	out.Homepage.Blurb = slices.Clone(c.Homepage.Blurb)
	out.Homepage.Features = slices.Clone(c.Homepage.Features)
	return &out
}

func (co *ContentOptions) clone() *ContentOptions {
	if co == nil {
		return nil
	}
	out := *co
	out.RemarkPlugins = slices.Clone(co.RemarkPlugins)
	out.RehypePlugins = slices.Clone(co.RehypePlugins)
	return &out
}

func (n Navbar) clone() Navbar {
	out := n
	if n.Logo != nil {
		logo := *n.Logo
		out.Logo = &logo
	}
	out.Items = n.Items.Clone()
	return out
}

// Clone returns a deep copy of the items.
func (items NavItems) Clone() NavItems {
	if items == nil {
		return nil
	}
	out := make(NavItems, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case *Link:
			cp := *v
			out[i] = &cp
		case *DocLink:
			cp := *v
			out[i] = &cp
		case *Dropdown:
			cp := *v
			cp.Items = v.Items.Clone()
			out[i] = &cp
		default:
			out[i] = item
		}
	}
	return out
}

func cloneFooterGroups(groups []FooterGroup) []FooterGroup {
	if groups == nil {
		return nil
	}
	out := make([]FooterGroup, len(groups))
	for i, g := range groups {
		g.Items = slices.Clone(g.Items)
		out[i] = g
	}
	return out
}
