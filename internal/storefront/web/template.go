package web

import "html/template"

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Storefront Stylist</title>
<style>
.hidden { display: none; }
.product-list { display: grid; grid-template-columns: repeat(auto-fill, minmax(240px, 1fr)); gap: 1rem; }
.match-badge { padding: 2px 8px; border-radius: 10px; font-size: 0.8em; margin-right: 4px; }
.match-badge.high { background: #d4edda; }
.match-badge.medium { background: #fff3cd; }
.match-badge.low { background: #f8d7da; }
.alert { background: #f8d7da; padding: 0.5rem 1rem; }
</style>
</head>
<body>
<main>
  <h1>Your Personal Stylist</h1>
  {{if .Alert}}<div class="alert" role="alert">{{.Alert}}</div>{{end}}
  <form method="post" action="/personalize" class="profile-form">
    <label for="style-profile">Style profile</label>
    <textarea id="style-profile" name="style_profile">{{.StyleProfile}}</textarea>
    <label for="wardrobe">Wardrobe</label>
    <textarea id="wardrobe" name="wardrobe">{{.Wardrobe}}</textarea>
    <button id="personalize-btn" type="submit"{{if not .ControlEnabled}} disabled{{end}}>Personalize</button>
  </form>
  <div id="loader" class="loader{{if not .Loading}} hidden{{end}}"></div>
  <div id="product-list-container" class="product-list"{{if not .ProductsVisible}} style="display:none"{{end}}>
    {{range .Cards}}
    <div class="product-card" data-id="{{.ID}}">
      <h3>{{.Name}}</h3>
      <div class="price">{{.Price}}</div>
      <div class="description">{{.Description}}</div>
      {{if .Annotated}}
      <div class="match-badges">
        {{range .Badges}}<span class="match-badge {{.Class}}">{{.Label}}</span>{{end}}
      </div>
      <div class="stylist-note"><strong>Stylist's Note:</strong> {{.Reason}}</div>
      {{end}}
    </div>
    {{end}}
  </div>
</main>
</body>
</html>
`))
