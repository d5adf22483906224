package homepage

import "html/template"

const pageHTML = `<!DOCTYPE html>
<html lang="{{.Lang}}"{{with .Theme}} data-theme="{{.}}"{{end}}>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- with .Description}}
<meta name="description" content="{{.}}">
{{- end}}
{{- with .Favicon}}
<link rel="icon" href="{{.}}">
{{- end}}
{{- range .Stylesheets}}
<link rel="stylesheet" href="{{.Href}}"{{with .Type}} type="{{.}}"{{end}}{{with .Integrity}} integrity="{{.}}"{{end}}{{with .CrossOrigin}} crossorigin="{{.}}"{{end}}>
{{- end}}
</head>
<body>
<nav class="navbar">
<div class="navbar__items">
<a class="navbar__brand" href="{{.Brand.Href}}">
{{- with .Brand.LogoSrc}}<img class="navbar__logo" src="{{.}}" alt="{{$.Brand.LogoAlt}}">{{end -}}
<b class="navbar__title">{{.Brand.Title}}</b></a>
{{- range .NavLeft}}{{template "navitem" .}}{{end}}
</div>
<div class="navbar__items navbar__items--right">
{{- range .NavRight}}{{template "navitem" .}}{{end}}
</div>
</nav>
{{- with .Banner}}
<picture class="hero__banner">
{{- if .Narrow}}
<source media="{{.Media}}" srcset="{{.Narrow}}">
{{- end}}
<img src="{{.Wide}}" alt="{{.Alt}}" style="width: 100%">
</picture>
{{- end}}
<header class="hero shadow--lw">
<div class="container">
<h1 class="blurb">
{{- range $i, $line := .Blurb}}{{if $i}}<br>{{end}}{{$line}}{{end -}}
</h1>
</div>
</header>
<main>
{{.Features}}
</main>
<footer class="footer footer--{{.FooterStyle}}">
<div class="footer__links">
{{- range .Footer}}
<div class="footer__col">
<div class="footer__title">{{.Title}}</div>
<ul class="footer__items">
{{- range .Links}}
<li class="footer__item">{{template "anchor" .}}</li>
{{- end}}
</ul>
</div>
{{- end}}
</div>
{{- with .Copyright}}
<div class="footer__copyright">{{.}}</div>
{{- end}}
</footer>
</body>
</html>
{{define "anchor"}}<a href="{{.URL}}"{{if .External}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Label}}</a>{{end}}
{{define "navitem"}}
{{- if .Children}}
<div class="navbar__item dropdown"><a class="navbar__link" href="#">{{.Label}}</a>
<ul class="dropdown__menu">
{{- range .Children}}
<li>{{template "anchor" .}}</li>
{{- end}}
</ul>
</div>
{{- else}}
<span class="navbar__item">{{template "anchor" .}}</span>
{{- end}}
{{- end}}
`

var pageTemplate = template.Must(template.New("homepage").Parse(pageHTML))
