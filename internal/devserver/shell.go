package devserver

import "html/template"

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="csrf-token" content="{{.CSRF}}">
<title>{{.Current.Title}} · Admin</title>
<link rel="stylesheet" href="/static/admin.css">
</head>
<body>
<aside class="admin-nav">
  <div id="user-info-accordion">
    <div id="user-info-header">
      <div id="profile-avatar">
        <img id="avatar-img" src="{{.AvatarURL}}" alt="">
        <div class="profile-avatar-overlay"><i class="fas fa-camera"></i></div>
      </div>
      <span class="user-name">admin</span>
      <button id="profile-dropdown-btn" type="button"><i class="fas fa-chevron-down"></i></button>
    </div>
    <div id="user-info-details"><a id="edit-profile-btn" href="#">Edit profile</a></div>
    <input type="file" id="avatar-upload" accept="image/*" hidden>
  </div>
  <button id="nav-toggle" type="button">Menu</button>
  <nav id="main-navigation">
    <div id="nav-links-container">
    {{range .Links}}<a class="nav-link-ajax{{if eq .Path $.Current.Path}} active{{end}}" href="{{.Path}}">{{.Title}}</a>
    {{end}}
    {{range .Sections}}<div class="nav-item-dropdown{{if .Open}} open{{end}}">
      <a class="nav-link-ajax nav-link-dropdown" href="#">{{.Label}}</a>
      <div class="nav-submenu">
      {{range .Pages}}<a class="nav-link-ajax nav-submenu-link{{if eq .Path $.Current.Path}} active{{end}}" href="{{.Path}}">{{.Title}}</a>
      {{end}}</div>
    </div>
    {{end}}
    </div>
  </nav>
</aside>
<main id="{{.RegionID}}">{{.Current.Body}}</main>
<script src="/static/wasm_exec.js"></script>
<script>
const go = new Go();
WebAssembly.instantiateStreaming(fetch("/static/adminnav.wasm"), go.importObject).then((r) => go.run(r.instance));
</script>
</body>
</html>
`))

type sectionView struct {
	Section
	Pages []Page
	Open  bool
}

type shellView struct {
	Current   Page
	Links     []Page
	Sections  []sectionView
	RegionID  string
	CSRF      string
	AvatarURL string
}
