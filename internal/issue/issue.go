// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ImportNotFoundId Id = iota + 1
	ImportAmbiguousId
	CompileFailedId
	ConfigLoadFailedId
	InvalidLoadPathsId
	ImportCycleId
	PermissionDeniedId
	NoStylesheetsFoundId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // project documentation
	extLinks []HttpLink  // external references, e.g. the Sass language docs
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

const sassImportDocs HttpLink = "https://sass-lang.com/documentation/at-rules/import/"

var (
	render = glamour.Render

	importNotFoundIssue = &Issue{
		id: ImportNotFoundId,
		mdMsg: `
# File to import not found!

An ` + "`@import`" + ` names a stylesheet that does not exist in any searched directory.

## Search order
1. The directory of the file containing the ` + "`@import`" + `
2. Each configured load path, in order

For ` + "`@import \"foo\"`" + ` every directory is checked for ` + "`_foo.scss`" + `, ` + "`foo.scss`" + `, ` + "`_foo.sass`" + ` and ` + "`foo.sass`" + `.

## Things you can try:
- Check the spelling of the import
- Add the directory holding the file to ` + "`loadPaths`" + `:
~~~cue
loadPaths: ["node_modules", "vendor/styles"]
~~~

- See where stylebuild looked:
~~~
$ stylebuild resolve foo --from src/site.scss
~~~`,
		extLinks: []HttpLink{sassImportDocs},
	}

	importAmbiguousIssue = &Issue{
		id: ImportAmbiguousId,
		mdMsg: `
# Ambiguous import!

One directory holds more than one file matching the ` + "`@import`" + `, for example both
` + "`_colors.scss`" + ` and ` + "`colors.scss`" + `. stylebuild will not guess which one you meant.

## Things you can try:
- Remove or rename one of the candidates
- Import with the full file name, e.g. ` + "`@import \"_colors.scss\"`",
		extLinks: []HttpLink{sassImportDocs + "#partials"},
	}

	compileFailedIssue = &Issue{
		id: CompileFailedId,
		mdMsg: `
# Stylesheet failed to compile!

The compiler rejected a stylesheet. The message above names the file, line and column
and shows the offending source.

## Things you can try:
- Fix the reported line; when the file is an imported partial, the location points into that partial
- Check for unbalanced braces and missing semicolons
- Make sure every variable is defined before it is used`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the expected schema.

## Where configuration is read from (first match wins):
1. The file passed with ` + "`--config`" + `
2. ` + "`stylebuild.cue`" + ` in the project base directory
3. ` + "`config.cue`" + ` in the user configuration directory

` + "`STYLEBUILD_*`" + ` environment variables override file values.

## Things you can try:
- Print a complete example:
~~~
$ stylebuild config dump
~~~

- Show the effective configuration:
~~~
$ stylebuild config show
~~~`,
	}

	invalidLoadPathsIssue = &Issue{
		id: InvalidLoadPathsId,
		mdMsg: `
# Invalid load paths!

` + "`loadPaths`" + ` (also accepted as ` + "`loadPath`" + ` or ` + "`importPaths`" + `) must be a directory or a list
of directories. Relative entries are resolved against the base directory.

## Example:
~~~cue
loadPaths: ["lib", "node_modules/bootstrap/scss"]
~~~`,
	}

	importCycleIssue = &Issue{
		id: ImportCycleId,
		mdMsg: `
# Import cycle detected!

Stylesheets import each other in a loop, so no build order exists.

## Example of a cycle:
~~~scss
// _a.scss
@import "b";

// _b.scss
@import "a"; // Cycle: a -> b -> a
~~~

## Things you can try:
- Move the shared rules into a third partial imported by both files
- Inspect the import graph:
~~~
$ stylebuild graph
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A stylesheet or directory could not be read, or an output file could not be written.
Unreadable files stop the build instead of being treated as missing.

## Things you can try:
- Check file and directory permissions
- Choose an output directory you own with ` + "`--out`",
	}

	noStylesheetsFoundIssue = &Issue{
		id: NoStylesheetsFoundId,
		mdMsg: `
# No stylesheets found!

No file under the base directory matched the include patterns.

## Things you can try:
- Check ` + "`--base`" + ` points at your sources
- Adjust the include patterns:
~~~cue
include: ["src/**/*.scss"]
~~~

- Partials (files starting with ` + "`_`" + `) are never built on their own`,
		extLinks: []HttpLink{sassImportDocs + "#partials"},
	}

	issues = map[Id]*Issue{
		importNotFoundIssue.Id():     importNotFoundIssue,
		importAmbiguousIssue.Id():    importAmbiguousIssue,
		compileFailedIssue.Id():      compileFailedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		invalidLoadPathsIssue.Id():   invalidLoadPathsIssue,
		importCycleIssue.Id():        importCycleIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
		noStylesheetsFoundIssue.Id(): noStylesheetsFoundIssue,
	}
)

// Values returns every catalogued issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
