// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigurationId Id = iota + 1
	MissingRepositoryId
	MissingCredentialsId
	UnsupportedDistId
	DeprecatedRepositoryId
	MetadataId
	SigningFailedId
	UploadFailedId
	FileExistsId
	RedirectId
	TLSConfigId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty
	extLinks []HttpLink  // external links that might be useful for the user
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

// Render renders the guide and its links for the terminal. stylePath is a
// glamour style name such as "dark", "light" or "notty".
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

const (
	pypircDocs    = HttpLink("https://packaging.python.org/specifications/pypirc/")
	uploadAPIDocs = HttpLink("https://warehouse.pypa.io/api-reference/legacy.html#upload-api")
	migrationDocs = HttpLink("https://packaging.python.org/guides/migrating-to-pypi-org/")
	coreMetaDocs  = HttpLink("https://packaging.python.org/specifications/core-metadata/")
	fileReuseDocs = HttpLink("https://pypi.org/help/#file-name-reuse")
)

var (
	render = glamour.Render

	configurationIssue = &Issue{
		id: ConfigurationId,
		mdMsg: `
# The upload settings are invalid

distpush could not build a usable destination from your flags, environment
and configuration file.

## Things you can try
- Print what distpush resolved:
~~~
$ distpush config show
~~~
- Check the values named in the error above`,
		docLinks: []HttpLink{pypircDocs},
	}

	missingRepositoryIssue = &Issue{
		id: MissingRepositoryId,
		mdMsg: `
# Repository not configured

The repository you asked for has no section in your configuration file, and
no complete URL was given.

## Things you can try
- Pass the upload URL directly:
~~~
$ distpush upload --repository-url https://upload.pypi.org/legacy/ dist/*
~~~
- Or add a section to ~/.pypirc:
~~~ini
[distutils]
index-servers =
    pypi
    private

[private]
repository = https://pkgs.example.com/legacy/
username = me
~~~
- Files that only contain a [server-login] section use an old format and
  need a [pypi] section.`,
		docLinks: []HttpLink{pypircDocs},
	}

	missingCredentialsIssue = &Issue{
		id: MissingCredentialsId,
		mdMsg: `
# No credentials

The index needs a username and a password (or API token) and none were found.

## Things you can try
- Set them in the environment:
~~~
$ export DISTPUSH_USERNAME=__token__
$ export DISTPUSH_PASSWORD=pypi-...
~~~
- Pass **--username** and **--password**
- Run distpush from a terminal to be prompted`,
		docLinks: []HttpLink{pypircDocs},
	}

	unsupportedDistIssue = &Issue{
		id: UnsupportedDistId,
		mdMsg: `
# Not a distribution file

A path given to distpush does not have a supported extension.

## Supported formats
- wheels: ` + "`.whl`" + `
- source distributions: ` + "`.tar.gz`, `.tar.bz2`, `.zip`" + `
- eggs: ` + "`.egg`" + `

## Things you can try
- Narrow the pattern:
~~~
$ distpush upload 'dist/*.whl' 'dist/*.tar.gz'
~~~`,
		docLinks: []HttpLink{uploadAPIDocs},
	}

	deprecatedRepositoryIssue = &Issue{
		id: DeprecatedRepositoryId,
		mdMsg: `
# Legacy index host

pypi.python.org and testpypi.python.org no longer accept uploads.

## Things you can try
- Use the default destination by dropping the repository URL, or set it to:
~~~
https://upload.pypi.org/legacy/
https://test.pypi.org/legacy/
~~~
- Update the ` + "`repository`" + ` entry of your ~/.pypirc section`,
		docLinks: []HttpLink{pypircDocs},
		extLinks: []HttpLink{migrationDocs},
	}

	metadataIssue = &Issue{
		id: MetadataId,
		mdMsg: `
# Invalid distribution metadata

distpush could not read the name and version from a distribution file.
Nothing was uploaded.

## Common causes
- The archive is truncated or not an archive at all
- The wheel has no ` + "`*.dist-info/METADATA`" + ` file
- The sdist has no ` + "`PKG-INFO`" + ` file
- ` + "`Name`" + ` or ` + "`Version`" + ` is missing

## Things you can try
- Rebuild the distribution and upload again`,
		docLinks: []HttpLink{coreMetaDocs},
	}

	signingFailedIssue = &Issue{
		id: SigningFailedId,
		mdMsg: `
# Signing failed

The signing tool did not produce a detached signature. Nothing was uploaded
for this file.

## Things you can try
- Check that the tool is installed and on PATH (see **--sign-with**)
- List your keys and pass one with **--identity**:
~~~
$ gpg --list-secret-keys
~~~
- Sign by hand, distpush attaches an existing ` + "`<file>.asc`" + `:
~~~
$ gpg --detach-sign -a dist/demo-1.0.tar.gz
~~~`,
		docLinks: []HttpLink{uploadAPIDocs},
	}

	uploadFailedIssue = &Issue{
		id: UploadFailedId,
		mdMsg: `
# The index rejected the upload

The server answered with an error. The status and reason above are the
server's own words. Files listed before it were uploaded.

## Things you can try
- 403: check the username and password (API tokens use the user ` + "`__token__`" + `)
- 400: read the reason, it usually names the offending metadata field
- Re-run with **--verbose** to see the response body`,
		docLinks: []HttpLink{uploadAPIDocs},
	}

	fileExistsIssue = &Issue{
		id: FileExistsId,
		mdMsg: `
# The file already exists

The index already has a file with this name. Files cannot be replaced.

## Things you can try
- Skip files the index already has:
~~~
$ distpush upload --skip-existing dist/*
~~~
- Bump the version and rebuild`,
		docLinks: []HttpLink{uploadAPIDocs},
		extLinks: []HttpLink{fileReuseDocs},
	}

	redirectIssue = &Issue{
		id: RedirectId,
		mdMsg: `
# The repository redirected

The repository URL answered with a redirect. distpush does not follow it,
because that would send your credentials and file to another address.

## Things you can try
- If you trust the new location, use it as **--repository-url**
- Check for a missing trailing slash, e.g. ` + "`/legacy/`",
		docLinks: []HttpLink{pypircDocs},
	}

	tlsConfigIssue = &Issue{
		id: TLSConfigId,
		mdMsg: `
# Certificate problem

A CA bundle (**--cert**) or client certificate (**--client-cert**) could not
be loaded.

## Things you can try
- Check the paths exist and contain PEM data
- The client certificate file must hold both the certificate and its key`,
		docLinks: []HttpLink{pypircDocs},
	}

	issues = map[Id]*Issue{
		configurationIssue.Id():        configurationIssue,
		missingRepositoryIssue.Id():    missingRepositoryIssue,
		missingCredentialsIssue.Id():   missingCredentialsIssue,
		unsupportedDistIssue.Id():      unsupportedDistIssue,
		deprecatedRepositoryIssue.Id(): deprecatedRepositoryIssue,
		metadataIssue.Id():             metadataIssue,
		signingFailedIssue.Id():        signingFailedIssue,
		uploadFailedIssue.Id():         uploadFailedIssue,
		fileExistsIssue.Id():           fileExistsIssue,
		redirectIssue.Id():             redirectIssue,
		tlsConfigIssue.Id():            tlsConfigIssue,
	}
)

// Values returns every issue ordered by Id.
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
