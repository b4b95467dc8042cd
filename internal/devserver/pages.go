package devserver

import "html/template"

// Page is one demo admin screen.
type Page struct {
	Path  string
	Title string
	// Section is the dropdown the page's link lives in, if any.
	Section string
	Body    template.HTML
	// Status overrides the response status; zero means 200.
	Status int
}

// Section is a nav dropdown.
type Section struct {
	Name  string
	Label string
}

// DefaultSections are the dropdowns of the demo shell.
var DefaultSections = []Section{
	{Name: "reports", Label: "Reports"},
}

// DefaultPages is the demo admin site.
var DefaultPages = []Page{
	{
		Path:  "/",
		Title: "Dashboard",
		Body: `<h1>Dashboard</h1>
<p>Welcome back.</p>
<a class="ajax-link btn btn-primary" href="/users/">Manage users</a>`,
	},
	{
		Path:  "/users/",
		Title: "Users",
		Body: `<h1>Users</h1>
<table class="table"><tbody><tr><td>ana</td><td><a class="ajax-link" href="/users/ana/">Details</a></td></tr></tbody></table>
<span data-bs-toggle="tooltip" title="Only staff can invite">?</span>`,
	},
	{
		Path:  "/users/ana/",
		Title: "Ana",
		Body:  `<h1>Ana</h1><a class="ajax-link" href="/users/">Back to users</a>`,
	},
	{
		Path:    "/reports/sales/",
		Title:   "Sales",
		Section: "reports",
		Body:    `<h1>Sales</h1><p>No sales yet.</p>`,
	},
	{
		Path:    "/reports/stock/",
		Title:   "Stock",
		Section: "reports",
		Body:    `<h1>Stock</h1><p>All items in stock.</p>`,
	},
	{
		Path:   "/broken/",
		Title:  "Broken",
		Body:   `<h1>Internal error</h1>`,
		Status: 500,
	},
}
