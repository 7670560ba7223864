package server

import "html/template"

var pages = template.Must(template.New("pages").Parse(`
{{define "index.html"}}<!doctype html>
<html>
<head><meta charset="utf-8"><title>feedview</title></head>
<body>
  <h1>feedview</h1>
  <ul>
    <li><a href="/cards">Cards</a></li>
    <li><a href="/quakes">Earthquakes</a></li>
  </ul>
</body>
</html>{{end}}

{{define "cards.html"}}<!doctype html>
<html>
<head><meta charset="utf-8"><title>Cards</title></head>
<body>
  <div>
    <h2>Select a Card</h2>
    <div style="display: flex; flex-wrap: wrap">
      {{range .Cards}}
      <form method="post" action="/cards/select/{{.ID}}" style="border: 1px solid #000; padding: 20px; margin: 10px">
        <button type="submit" data-card="{{.ID}}" style="all: unset; cursor: pointer">
          <p>{{.Name}}</p>
          <img src="{{.ImageURL}}" alt="{{.Name}}" style="width: 100px">
        </button>
      </form>
      {{end}}
    </div>
    {{with .Selected}}
    <div id="selected">
      <h2>Selected Card</h2>
      <p>{{.Name}}</p>
      <img src="{{.ImageURL}}" alt="{{.Name}}" style="width: 200px">
    </div>
    {{end}}
  </div>
</body>
</html>{{end}}

{{define "quakes.html"}}<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Earthquakes</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <style>body { margin: 0 } #map { height: 100vh }</style>
</head>
<body>
  <div id="map"></div>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script>
    const map = L.map("map").setView([{{.Center.Lat}}, {{.Center.Lng}}], {{.Zoom}});
    L.tileLayer({{.TileURL}}, { attribution: {{.Attribution}} }).addTo(map);
    const pins = {{.Pins}};
    for (const p of pins) {
      L.marker([p.lat, p.lon]).addTo(map).bindPopup(p.popup);
    }
  </script>
</body>
</html>{{end}}
`))
