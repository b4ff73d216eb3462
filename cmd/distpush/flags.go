// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/pflag"

	"github.com/distpush/distpush/internal/config"
)

// bindDestinationFlags registers the flags that select the repository and
// its credentials. Defaults stay empty so that environment variables and the
// configuration file can fill them in; the documented default applies last.
func bindDestinationFlags(f *pflag.FlagSet, opts *config.Options) {
	f.StringVarP(&opts.Repository, "repository", "r", "",
		`repository section of the configuration file to upload to (default "`+config.DefaultRepository+`")`)
	f.StringVar(&opts.RepositoryURL, "repository-url", "",
		"repository URL to upload to, overrides --repository")
	f.StringVarP(&opts.Username, "username", "u", "", "username to authenticate with")
	f.StringVarP(&opts.Password, "password", "p", "", "password or API token to authenticate with")
	f.StringVar(&opts.ConfigFile, "config-file", "",
		`the .pypirc configuration file to use (default "`+config.DefaultConfigFile+`")`)
	f.StringVar(&opts.CACert, "cert", "", "path to a CA bundle used to verify the repository")
	f.StringVar(&opts.ClientCert, "client-cert", "", "path to a PEM file holding a client certificate and key")
}
