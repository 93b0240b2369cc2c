package page

// PageTemplate is the HTML skeleton of the portfolio page. Chart mounts are
// left empty and filled by Build.
const PageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<link rel="stylesheet" href="{{.StaticPrefix}}styles.css">
<script src="{{.EChartsURL}}"></script>
</head>
<body>
<header class="site-header">
  <h1>{{.Title}}</h1>
  <nav class="navpill">
    {{- range .Nav}}
    <a href="{{.Href}}"{{if .Current}} aria-current="page"{{end}}>{{.Label}}</a>
    {{- end}}
  </nav>
</header>

<main>
  <section id="charts">
    <h2>{{.BarTitle}}</h2>
    <div id="chartArea" class="chart-mount"></div>

    <h2>{{.DonutTitle}}</h2>
    <div id="artArea" class="chart-mount"></div>
  </section>

  <section id="views">
    <h2>Video game sales</h2>
    <p class="muted">Source: {{.DatasetSource}}</p>
    {{- range .Views}}
    <h3>{{.Title}}</h3>
    <div id="{{.ID}}" class="view-mount"></div>
    {{- end}}
  </section>
</main>

<footer class="site-footer">
  <p>&copy; <span id="year">{{.Year}}</span>{{if .Author}} {{.Author}}{{end}}</p>
</footer>

<script src="{{.StaticPrefix}}hover.js"{{if .LiveHover}} data-live="{{.HoverSocket}}"{{end}}></script>
</body>
</html>
`
