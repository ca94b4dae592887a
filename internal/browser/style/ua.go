// internal/browser/style/ua.go
package style

// DefaultUserAgentCSS provides display defaults, hidden-content rules and
// intrinsic dimensions for form controls.
const DefaultUserAgentCSS = `
html, body, div, p, h1, h2, h3, h4, h5, h6, ul, ol, menu, dl, dt, dd, form,
header, footer, section, article, aside, nav, main, address, blockquote, pre,
figure, figcaption, fieldset, legend, details, summary, hgroup, search, hr,
center, dialog[open], optgroup, option {
    display: block;
}

head, script, style, template, title, meta, link, base, noscript, datalist,
param, source, track, area, map, dialog, [hidden] {
    display: none;
}

slot { display: contents; }

body { margin: 8px; }

h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.83em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 1em 0; font-weight: bold; }
h4 { margin: 1.33em 0; font-weight: bold; }
h5 { font-size: 0.83em; margin: 1.67em 0; font-weight: bold; }
h6 { font-size: 0.67em; margin: 2.33em 0; font-weight: bold; }
p, blockquote, figure, dl { margin: 1em 0; }

ul, ol, menu { padding-left: 40px; margin: 1em 0; }
li { display: list-item; }

table { display: table; }
caption { display: table-caption; }
thead { display: table-header-group; }
tbody { display: table-row-group; }
tfoot { display: table-footer-group; }
tr { display: table-row; }
td, th { display: table-cell; padding: 1px; }
colgroup { display: table-column-group; }
col { display: table-column; }

input, button, textarea, select, img, video, canvas, iframe, meter, progress, embed, object {
    display: inline-block;
}

input, button, textarea, select {
    margin: 2px 0;
    padding: 1px 2px;
    border-width: 1px;
}

input { width: 170px; height: 21px; cursor: text; }
textarea { width: 180px; height: 36px; cursor: text; }
select { width: 120px; height: 21px; cursor: default; }

input[type="checkbox"], input[type="radio"] {
    width: 13px;
    height: 13px;
    padding: 0;
    margin: 3px;
    border-width: 0;
    cursor: default;
}

input[type="hidden"] { display: none; }

button, input[type="submit"], input[type="button"], input[type="reset"] {
    width: auto;
    height: auto;
    padding: 1px 6px;
    cursor: default;
}

a[href], area[href] { cursor: pointer; }

b, strong { font-weight: bold; }
`
