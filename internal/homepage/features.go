package homepage

import (
	"bytes"
	"html/template"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/markdown"
)

// FeatureSection renders the feature highlight block below the hero.
type FeatureSection interface {
	RenderFeatures(features []config.Feature) (template.HTML, error)
}

// FeatureSectionFunc adapts a function to FeatureSection.
type FeatureSectionFunc func(features []config.Feature) (template.HTML, error)

func (f FeatureSectionFunc) RenderFeatures(features []config.Feature) (template.HTML, error) {
	return f(features)
}

// MarkdownFeatures renders each feature as a column whose description is
// markdown, converted with goldmark and sanitized.
type MarkdownFeatures struct {
	Assets   AssetResolver
	Markdown markdown.Options
}

type featureView struct {
	Title       string
	Image       string
	Description template.HTML
}

var featuresTemplate = template.Must(template.New("features").Parse(`<section class="features"><div class="container"><div class="row">
{{- range .}}
<div class="col col--4 feature">
{{- if .Image}}<div class="text--center"><img class="featureSvg" src="{{.Image}}" alt="{{.Title}}"></div>{{end}}
<div class="text--center padding-horiz--md"><h3>{{.Title}}</h3>{{.Description}}</div>
</div>
{{- end}}
</div></div></section>`))

func (m MarkdownFeatures) RenderFeatures(features []config.Feature) (template.HTML, error) {
	if len(features) == 0 {
		return "", nil
	}
	views := make([]featureView, 0, len(features))
	for _, f := range features {
		desc, err := markdown.Render([]byte(f.Description), m.Markdown)
		if err != nil {
			return "", err
		}
		img := f.Image
		if img != "" && m.Assets != nil {
			if img, err = m.Assets.Resolve(img); err != nil {
				return "", err
			}
		}
		views = append(views, featureView{Title: f.Title, Image: img, Description: template.HTML(desc)}) //nolint:gosec // sanitized by markdown.Render
	}
	var buf bytes.Buffer
	if err := featuresTemplate.Execute(&buf, views); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}
